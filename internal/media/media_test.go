package media

import "testing"

func TestFilenameFromURI(t *testing.T) {
	s := NewService()

	tests := []struct {
		uri  string
		want string
	}{
		{"gs://pawdesk-media/2026/01/photo.jpg", "photo.jpg"},
		{"gs://bucket/file.mp4", "file.mp4"},
		{"gs://bucket-only", "bucket-only"},
	}

	for _, tt := range tests {
		if got := s.FilenameFromURI(tt.uri); got != tt.want {
			t.Errorf("FilenameFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestSplitURI(t *testing.T) {
	bucket, object, err := splitURI("gs://pawdesk-media/2026/01/photo.jpg")
	if err != nil {
		t.Fatalf("splitURI: %v", err)
	}
	if bucket != "pawdesk-media" || object != "2026/01/photo.jpg" {
		t.Errorf("splitURI = %q/%q", bucket, object)
	}

	for _, bad := range []string{"http://x/y", "gs://bucket", "gs://bucket/"} {
		if _, _, err := splitURI(bad); err == nil {
			t.Errorf("splitURI(%q) succeeded, want error", bad)
		}
	}
}
