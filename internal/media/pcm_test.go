package media

import "testing"

func TestPCMBytesRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 256, -256, 32767, -32768}

	b := PCMToBytes(samples)
	if len(b) != 2*len(samples) {
		t.Fatalf("serialized %d bytes, want %d", len(b), 2*len(samples))
	}

	back := BytesToPCM(b)
	if len(back) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(back), len(samples))
	}
	for i := range samples {
		if back[i] != samples[i] {
			t.Errorf("sample %d: got %d, want %d", i, back[i], samples[i])
		}
	}
}

func TestBytesToPCMLittleEndian(t *testing.T) {
	// 0x0102 little-endian is the byte pair 02 01.
	pcm := BytesToPCM([]byte{0x02, 0x01})
	if len(pcm) != 1 || pcm[0] != 0x0102 {
		t.Fatalf("got %v, want [258]", pcm)
	}
}

func TestValidateVideoFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"movie.mp4", true},
		{"movie.MP4", true},
		{"movie.mkv", true},
		{"movie.webm", true},
		{"movie.avi", true},
		{"movie.mov", true},
		{"song.mp3", false},
		{"archive.tar.gz", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		if got := ValidateVideoFormat(tt.filename); got != tt.want {
			t.Errorf("ValidateVideoFormat(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}
