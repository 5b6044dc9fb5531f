package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// MetadataDB handles SQLite database operations for dubbing jobs.
type MetadataDB struct {
	db *sql.DB
}

// NewMetadataDB opens (and if needed initializes) the job metadata database.
func NewMetadataDB(dbPath string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS dub_jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		request_name TEXT NOT NULL,
		source_type TEXT NOT NULL,
		source_language TEXT,
		target_language TEXT NOT NULL,
		local_path TEXT NOT NULL,
		gdrive_url TEXT,
		created_at DATETIME NOT NULL,
		duration_ms INTEGER,
		segment_count INTEGER,
		warnings TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_dub_jobs_created_at ON dub_jobs(created_at);
	CREATE INDEX IF NOT EXISTS idx_dub_jobs_request_name ON dub_jobs(request_name);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %v", err)
	}

	return &MetadataDB{db: db}, nil
}

// SaveJob records a finished dubbing job.
func (mdb *MetadataDB) SaveJob(jobID, requestName, sourceType string, result *types.DubResult) error {
	query := `
	INSERT INTO dub_jobs (job_id, request_name, source_type, source_language, target_language,
		local_path, gdrive_url, created_at, duration_ms, segment_count, warnings)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := mdb.db.Exec(query, jobID, requestName, sourceType,
		result.SourceLanguage, result.TargetLanguage,
		result.LocalPath, result.GDriveURL, time.Now(),
		result.DurationMS, result.SegmentCount, strings.Join(result.Warnings, "; "))
	if err != nil {
		return fmt.Errorf("failed to save job metadata: %v", err)
	}

	return nil
}

// GetJob retrieves job metadata by job ID.
func (mdb *MetadataDB) GetJob(jobID string) (map[string]interface{}, error) {
	query := `
	SELECT job_id, request_name, source_type, source_language, target_language,
		local_path, gdrive_url, created_at, duration_ms, segment_count, warnings
	FROM dub_jobs WHERE job_id = ?
	`

	row := mdb.db.QueryRow(query, jobID)
	record, err := scanJob(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %v", err)
	}
	return record, nil
}

// ListJobs returns the most recent jobs.
func (mdb *MetadataDB) ListJobs(limit int) ([]map[string]interface{}, error) {
	query := `
	SELECT job_id, request_name, source_type, source_language, target_language,
		local_path, gdrive_url, created_at, duration_ms, segment_count, warnings
	FROM dub_jobs ORDER BY created_at DESC LIMIT ?
	`

	rows, err := mdb.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %v", err)
	}
	defer rows.Close()

	var jobs []map[string]interface{}
	for rows.Next() {
		record, err := scanJob(rows.Scan)
		if err != nil {
			continue
		}
		jobs = append(jobs, record)
	}

	return jobs, rows.Err()
}

func scanJob(scan func(...interface{}) error) (map[string]interface{}, error) {
	var (
		jobID, name, sourceType, sourceLang, targetLang string
		localPath, gdriveURL, warnings                  string
		createdAt                                       time.Time
		durationMS                                      int64
		segmentCount                                    int
	)

	if err := scan(&jobID, &name, &sourceType, &sourceLang, &targetLang,
		&localPath, &gdriveURL, &createdAt, &durationMS, &segmentCount, &warnings); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"job_id":          jobID,
		"request_name":    name,
		"source_type":     sourceType,
		"source_language": sourceLang,
		"target_language": targetLang,
		"local_path":      localPath,
		"gdrive_url":      gdriveURL,
		"created_at":      createdAt,
		"duration_ms":     durationMS,
		"segment_count":   segmentCount,
		"warnings":        warnings,
	}, nil
}

// Close closes the database connection.
func (mdb *MetadataDB) Close() error {
	return mdb.db.Close()
}
