package imaging

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dermaclinic/dermaclinic/internal/platform/blobstore"
)

func newTestServer() (*echo.Echo, blobstore.ImageStore) {
	store := blobstore.NewMemoryStore()
	h := NewHandler(store)

	e := echo.New()
	// Routes registered without the auth group so the handler is exercised
	// directly.
	e.POST("/api/v1/images", h.Upload)
	e.GET("/api/v1/images/:id", h.Download)
	e.DELETE("/api/v1/images/:id", h.Delete)
	return e, store
}

func multipartUpload(t *testing.T, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="lesion.jpg"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(payload)
	w.WriteField("category", "skin-photo")
	w.WriteField("patient_id", "1")
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestUploadAndDownloadRoundTrip(t *testing.T) {
	e, _ := newTestServer()
	payload := []byte("fake-jpeg-bytes")
	body, contentType := multipartUpload(t, "image/jpeg", payload)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Image blobstore.ImageMetadata `json:"image"`
		URL   string                  `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Image.ID == "" || resp.URL == "" {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Image.Category != "skin-photo" || resp.Image.PatientID != 1 {
		t.Errorf("metadata = %+v", resp.Image)
	}

	get := httptest.NewRequest(http.MethodGet, resp.URL, nil)
	out := httptest.NewRecorder()
	e.ServeHTTP(out, get)
	if out.Code != http.StatusOK {
		t.Fatalf("download status = %d", out.Code)
	}
	got, _ := io.ReadAll(out.Body)
	if !bytes.Equal(got, payload) {
		t.Error("downloaded bytes differ from upload")
	}
}

func TestUploadRejectsDisallowedContentType(t *testing.T) {
	e, _ := newTestServer()
	body, contentType := multipartUpload(t, "application/zip", []byte("zipzip"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestDeleteReportsMissing(t *testing.T) {
	e, _ := newTestServer()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/images/no-such-id", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
