package helpers

import "testing"

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{
			url:  "https://res.cloudinary.com/demo/image/upload/v1700000000/kluub-events/abc123.jpg",
			want: "kluub-events/abc123",
		},
		{
			url:  "https://res.cloudinary.com/demo/image/upload/kluub-events/abc123.webp",
			want: "kluub-events/abc123",
		},
		{
			url:     "https://example.com/not-cloudinary.jpg",
			wantErr: true,
		},
		{
			url:     "https://res.cloudinary.com/demo/image/upload/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		got, err := ExtractPublicID(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ExtractPublicID(%q): expected error, got %q", tt.url, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ExtractPublicID(%q): %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractPublicID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
