package manage

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/erikote04/framekit/pkg/framekit"
	"github.com/erikote04/framekit/pkg/grid"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	framed := filepath.Join(t.TempDir(), "a@framed.jpg")
	if err := os.WriteFile(framed, []byte("\xff\xd8\xff\xd9"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	album := &framekit.Album{
		InPath: "2024/paris",
		Title:  "paris",
		Photos: []*framekit.Photo{
			{RelPath: "2024/paris/a.jpg", Width: 400, Height: 200, Framed: framekit.ThumbMeta{X: 400, Y: 200, Path: framed, RelPath: "2024/paris/_/a@framed.jpg"}},
			{RelPath: "2024/paris/b.jpg", Width: 200, Height: 200},
			{RelPath: "2024/paris/c.jpg", Width: 300, Height: 200},
		},
	}
	c := &framekit.Config{Grid: grid.Options{ContainerWidth: 400, RowHeight: 100, Spacing: 10}}
	return New(c, &framekit.Assembly{Albums: []*framekit.Album{album}})
}

func TestLayoutHandler(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantRows   int
		wantHeight float64
	}{
		{name: "default width", query: "album=2024/paris", wantStatus: http.StatusOK, wantRows: 2, wantHeight: 210},
		{name: "wide container", query: "album=2024/paris&width=1000", wantStatus: http.StatusOK, wantRows: 1, wantHeight: 100},
		{name: "justify last", query: "album=2024/paris&width=1000&justify_last=true", wantStatus: http.StatusOK, wantRows: 1, wantHeight: 100},
		{name: "bad width", query: "album=2024/paris&width=wide", wantStatus: http.StatusBadRequest},
		{name: "zero width", query: "album=2024/paris&width=0", wantStatus: http.StatusBadRequest},
		{name: "negative spacing", query: "album=2024/paris&spacing=-1", wantStatus: http.StatusBadRequest},
		{name: "bad justify_last", query: "album=2024/paris&justify_last=maybe", wantStatus: http.StatusBadRequest},
		{name: "unknown album", query: "album=2023/rome", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/layout?"+tt.query, nil)
			rec := httptest.NewRecorder()
			s.LayoutHandler()(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var got LayoutJSON
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got.Rows) != tt.wantRows || got.Height != tt.wantHeight {
				t.Errorf("layout = %d rows, height %v; want %d rows, height %v", len(got.Rows), got.Height, tt.wantRows, tt.wantHeight)
			}
			if got.Rows[0].Tiles[0].Path != "2024/paris/a.jpg" {
				t.Errorf("first tile = %+v", got.Rows[0].Tiles[0])
			}
		})
	}
}

func TestLayoutHandlerJustifyLast(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/layout?album=2024/paris&width=1000&justify_last=1", nil)
	rec := httptest.NewRecorder()
	s.LayoutHandler()(rec, req)

	var got LayoutJSON
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	row := got.Rows[0]
	last := row.Tiles[len(row.Tiles)-1]
	if !row.Justified || math.Abs(last.X+last.W-1000) > 1e-6 {
		t.Errorf("row = %+v, want justified to 1000", row)
	}
}

func TestFrameHandler(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{name: "framed", query: "album=2024/paris&path=2024/paris/a.jpg", wantStatus: http.StatusOK},
		{name: "not framed", query: "album=2024/paris&path=2024/paris/b.jpg", wantStatus: http.StatusNotFound},
		{name: "unknown photo", query: "album=2024/paris&path=nope.jpg", wantStatus: http.StatusNotFound},
		{name: "unknown album", query: "album=nope&path=2024/paris/a.jpg", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/frame?"+tt.query, nil)
			rec := httptest.NewRecorder()
			s.FrameHandler()(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSetAssembly(t *testing.T) {
	s := testServer(t)
	s.SetAssembly(&framekit.Assembly{})

	req := httptest.NewRequest(http.MethodGet, "/api/layout?album=2024/paris", nil)
	rec := httptest.NewRecorder()
	s.LayoutHandler()(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after SetAssembly = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
