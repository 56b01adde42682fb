package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/shouniet/medpetrx/pkg/extract"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	tmp := t.TempDir()
	_ = os.Setenv("UPLOAD_BASE", tmp)
	initDB()
	seedDB()
	svc := extract.NewService(db, nil)
	extractQueue = extract.NewQueue(svc, extract.WithWorkers(1))
	r := gin.Default()
	setupRoutes(r)
	return r
}

func loginAs(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	regBody, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp := performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}
	return token
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)
	token := loginAs(t, r, "owner1", "pass12")

	// 1. Create pet
	petBody, _ := json.Marshal(map[string]string{"name": "Biscuit", "species": "Dog", "breed": "Beagle"})
	resp := performRequest(r, http.MethodPost, "/pets", bytes.NewBuffer(petBody), token, "application/json")
	if resp.Code != http.StatusCreated {
		t.Fatalf("create pet failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var pet struct {
		ID uint `json:"ID"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &pet)
	petPath := "/pets/" + itoa(pet.ID)

	// 2. Upload a PNG document (extraction runs async; status starts pending)
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="visit.png"`)
	h.Set("Content-Type", "image/png")
	w, _ := mw.CreatePart(h)
	_ = png.Encode(w, image.NewGray(image.Rect(0, 0, 8, 8)))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, petPath+"/documents/upload", buf, token, mw.FormDataContentType())
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var doc struct {
		ID               uint   `json:"id"`
		ExtractionStatus string `json:"extraction_status"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &doc)
	if doc.ExtractionStatus != "pending" {
		t.Fatalf("expected pending after upload, got %s", doc.ExtractionStatus)
	}

	// 3. Rejecting the upload type
	bad := &bytes.Buffer{}
	mw2 := multipart.NewWriter(bad)
	h2 := textproto.MIMEHeader{}
	h2.Set("Content-Disposition", `form-data; name="file"; filename="notes.txt"`)
	h2.Set("Content-Type", "text/plain")
	w2, _ := mw2.CreatePart(h2)
	_, _ = w2.Write([]byte("plain text"))
	_ = mw2.Close()
	resp = performRequest(r, http.MethodPost, petPath+"/documents/upload", bad, token, mw2.FormDataContentType())
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for text upload, got %d", resp.Code)
	}

	// 4. Confirm a reviewed batch against the document
	batch := map[string]any{
		"medications": []map[string]any{
			{"decision": "approved", "drug_name": "Simparica Trio"},
			{"decision": "rejected", "drug_name": "Carprofen"},
		},
		"problems": []map[string]any{
			{"decision": "edited", "condition_name": "Otitis externa"},
		},
	}
	cb, _ := json.Marshal(batch)
	resp = performRequest(r, http.MethodPost, petPath+"/documents/"+itoa(doc.ID)+"/confirm", bytes.NewBuffer(cb), token, "application/json")
	if resp.Code != http.StatusCreated {
		t.Fatalf("confirm failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var result map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &result)
	if result["medications_saved"] != float64(1) || result["problems_saved"] != float64(1) {
		t.Fatalf("unexpected confirm counts: %+v", result)
	}

	// 5a. Document readable by its owner at the top-level route
	resp = performRequest(r, http.MethodGet, "/documents/"+itoa(doc.ID), nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("get document failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 5. Saved records visible via list endpoints
	resp = performRequest(r, http.MethodGet, petPath+"/medications", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list medications failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 6. Another owner cannot see this pet
	token2 := loginAs(t, r, "owner2", "pass12")
	resp = performRequest(r, http.MethodGet, petPath, nil, token2, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign pet, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodGet, "/documents/"+itoa(doc.ID), nil, token2, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign document, got %d", resp.Code)
	}

	// 7. Unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/pets", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list pets got %d", unauth.Code)
	}
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}
