package framekit

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeFields map[string]any

func (f fakeFields) GetString(k string) (string, error) {
	v, ok := f[k]
	if !ok {
		return "", fmt.Errorf("key %q not found", k)
	}
	return fmt.Sprint(v), nil
}

func (f fakeFields) GetInt(k string) (int64, error) {
	v, ok := f[k].(int64)
	if !ok {
		return 0, fmt.Errorf("key %q not found", k)
	}
	return v, nil
}

func (f fakeFields) GetFloat(k string) (float64, error) {
	v, ok := f[k].(float64)
	if !ok {
		return 0, fmt.Errorf("key %q not found", k)
	}
	return v, nil
}

func (f fakeFields) GetStrings(k string) ([]string, error) {
	v, ok := f[k].([]string)
	if !ok {
		return nil, fmt.Errorf("key %q not found", k)
	}
	return v, nil
}

func TestFromFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  fakeFields
		want    Photo
		wantErr bool
	}{
		{
			name: "full exif",
			fields: fakeFields{
				"Make":             "Apple",
				"Model":            "iPhone 15 Pro",
				"LensModel":        "iPhone 15 Pro back triple camera 6.86mm f/1.78",
				"ImageWidth":       int64(4032),
				"ImageHeight":      int64(3024),
				"ISO":              int64(80),
				"FNumber":          1.78,
				"ExposureTime":     "1/120",
				"FocalLength":      "6.9 mm",
				"Orientation":      "Rotate 90 CW",
				"Keywords":         []string{"fav", "paris"},
				"Headline":         "Seine",
				"DateTimeOriginal": "2024:05:01 10:11:12",
			},
			want: Photo{
				Make:         "Apple",
				Model:        "iPhone 15 Pro",
				LensModel:    "iPhone 15 Pro back triple camera 6.86mm f/1.78",
				Width:        4032,
				Height:       3024,
				ISO:          80,
				Aperture:     1.78,
				ExposureTime: 1.0 / 120,
				FocalLength:  6.9,
				Orientation:  90,
				Keywords:     []string{"fav", "paris"},
				Title:        "Seine",
				Taken:        time.Date(2024, 5, 1, 10, 11, 12, 0, time.UTC),
			},
		},
		{
			name: "aperture value fallback",
			fields: fakeFields{
				"ImageWidth":    int64(100),
				"ImageHeight":   int64(50),
				"ApertureValue": 2.8,
			},
			want: Photo{Width: 100, Height: 50, Aperture: 2.8},
		},
		{
			name:    "missing dimensions",
			fields:  fakeFields{"Model": "X100V"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fromFields("test.jpg", tt.fields)
			if (err != nil) != tt.wantErr {
				t.Fatalf("fromFields() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("fromFields() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseExposure(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1/120", 1.0 / 120},
		{"1/4000", 1.0 / 4000},
		{"0.5", 0.5},
		{"2", 2},
		{"2s", 2},
		{" 1/60 ", 1.0 / 60},
		{"1/0", 0},
		{"", 0},
		{"fast", 0},
	}
	for _, tt := range tests {
		if got := parseExposure(tt.in); got != tt.want {
			t.Errorf("parseExposure(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseLeadingFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"4.2 mm", 4.2},
		{"24.0 mm (35 mm equivalent: 26.0 mm)", 24},
		{"50mm", 50},
		{"", 0},
		{"unknown", 0},
	}
	for _, tt := range tests {
		if got := parseLeadingFloat(tt.in); got != tt.want {
			t.Errorf("parseLeadingFloat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Horizontal (normal)", 0},
		{"Rotate 90 CW", 90},
		{"6", 90},
		{"Rotate 180", 180},
		{"3", 180},
		{"Rotate 270 CW", 270},
		{"8", 270},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseOrientation(tt.in); got != tt.want {
			t.Errorf("parseOrientation(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsPhoto(t *testing.T) {
	for path, want := range map[string]bool{
		"a.jpg":      true,
		"b/IMG.JPEG": true,
		"c.png":      false,
		"d.mov":      false,
		"jpg":        false,
	} {
		if got := isPhoto(path); got != want {
			t.Errorf("isPhoto(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestURLSafePath(t *testing.T) {
	if got, want := urlSafePath("2024/Summer trip/IMG 1.jpg"), "2024/Summer_trip/IMG_1.jpg"; got != want {
		t.Errorf("urlSafePath() = %q, want %q", got, want)
	}
	if got, want := urlSafePath("a/100%.jpg"), "a/100%25.jpg"; got != want {
		t.Errorf("urlSafePath() = %q, want %q", got, want)
	}
}

func TestRootNames(t *testing.T) {
	tests := []struct {
		name  string
		roots []string
		want  []string
	}{
		{name: "distinct", roots: []string{"/x/2023", "/y/2024"}, want: []string{"2023", "2024"}},
		{name: "same base name", roots: []string{"/x/photos", "/y/photos/"}, want: []string{"photos", "photos-2"}},
		{name: "suffix already taken", roots: []string{"/a/photos", "/b/photos-2", "/c/photos"}, want: []string{"photos", "photos-2", "photos-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, rootNames(tt.roots)); diff != "" {
				t.Errorf("rootNames() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUniqueRoots(t *testing.T) {
	got := uniqueRoots([]string{"/x/photos", "/x/photos/", "/x/../x/photos", "/y/photos"})
	if diff := cmp.Diff([]string{"/x/photos", "/y/photos"}, got); diff != "" {
		t.Errorf("uniqueRoots() mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiRootPhotosStayApart(t *testing.T) {
	roots := []string{"/x/photos", "/y/photos"}
	names := rootNames(roots)

	ps := []*Photo{}
	for i, root := range roots {
		p := &Photo{Width: int64(400 - 200*i), Height: int64(200 + 200*i), Taken: time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC)}
		if err := place(p, root, root+"/a.jpg", names[i], true); err != nil {
			t.Fatalf("place() error = %v", err)
		}
		ps = append(ps, p)
	}

	if ps[0].RelPath == ps[1].RelPath {
		t.Fatalf("both photos have RelPath %q", ps[0].RelPath)
	}
	if framedRelPath(ps[0]) == framedRelPath(ps[1]) {
		t.Errorf("both photos frame to %q", framedRelPath(ps[0]))
	}

	c := &Config{OutDir: "/out", SortBy: SortCaptured}
	a := assemble(c, ps)
	if len(a.Albums) != 2 {
		t.Fatalf("assemble() made %d albums, want 2", len(a.Albums))
	}
	for _, al := range a.Albums {
		if len(al.Photos) != 1 {
			t.Errorf("album %s has %d photos, want 1", al.InPath, len(al.Photos))
		}
	}
	if got, want := a.Albums[1].OutPath, filepath.Join("/out", "photos-2"); got != want {
		t.Errorf("second album OutPath = %q, want %q", got, want)
	}
}
