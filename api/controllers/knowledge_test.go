package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/api/middleware"
	"github.com/algobros/terminal-backend/internal/knowledge"
	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
)

type stubKnowledgeService struct {
	submitted  *knowledge.SubmitKnowledgeDTO
	submitErr  error
	rows       []models.KnowledgeItem
	listErr    error
	deleted    int64
	deleteErr  error
	deletedFor uuid.UUID
}

func (s *stubKnowledgeService) Submit(_ context.Context, dto knowledge.SubmitKnowledgeDTO) (*models.KnowledgeItem, error) {
	s.submitted = &dto
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return dto.ToModel(), nil
}

func (s *stubKnowledgeService) List(_ context.Context, _ uuid.UUID) ([]models.KnowledgeItem, error) {
	return s.rows, s.listErr
}

func (s *stubKnowledgeService) DeleteAll(_ context.Context, profileID uuid.UUID) (int64, error) {
	s.deletedFor = profileID
	return s.deleted, s.deleteErr
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, fileName, fileType string, fileData []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+fileName+`"`)
		header.Set("Content-Type", fileType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestKnowledgeSubmitVideo(t *testing.T) {
	svc := &stubKnowledgeService{}
	handler := KnowledgeSubmit(svc, nil)

	req := multipartRequest(t, "/v1/knowledge", map[string]string{
		"type":  "VIDEO",
		"title": "Mentorship EP 4",
	}, "file", "ep4.mp4", "video/mp4", []byte{0x00, 0x01, 0x02})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.submitted == nil {
		t.Fatal("expected submit call")
	}
	if svc.submitted.Type != enums.KnowledgeTypeVideo {
		t.Fatalf("unexpected type %q", svc.submitted.Type)
	}
	if svc.submitted.MimeType != "video/mp4" {
		t.Fatalf("unexpected mime type %q", svc.submitted.MimeType)
	}
	if len(svc.submitted.SourceData) != 3 {
		t.Fatalf("unexpected payload size %d", len(svc.submitted.SourceData))
	}
}

func TestKnowledgeSubmitDocx(t *testing.T) {
	svc := &stubKnowledgeService{}
	handler := KnowledgeSubmit(svc, nil)

	req := multipartRequest(t, "/v1/knowledge", map[string]string{
		"type":  "DOCX",
		"title": "Strategy notes",
	}, "file", "notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte{0x50, 0x4b, 0x03, 0x04})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.submitted == nil {
		t.Fatal("expected submit call")
	}
	if svc.submitted.Type != enums.KnowledgeTypeDocx {
		t.Fatalf("unexpected type %q", svc.submitted.Type)
	}
	if svc.submitted.MimeType != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		t.Fatalf("unexpected mime type %q", svc.submitted.MimeType)
	}
}

func TestKnowledgeSubmitDocxRequiresFile(t *testing.T) {
	svc := &stubKnowledgeService{}
	handler := KnowledgeSubmit(svc, nil)

	req := multipartRequest(t, "/v1/knowledge", map[string]string{
		"type":  "DOCX",
		"title": "Strategy notes",
	}, "", "", "", nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.submitted != nil {
		t.Fatal("submit must not be called without a file part")
	}
}

func TestKnowledgeSubmitTextFromField(t *testing.T) {
	svc := &stubKnowledgeService{}
	handler := KnowledgeSubmit(svc, nil)

	req := multipartRequest(t, "/v1/knowledge", map[string]string{
		"type":    "TEXT",
		"title":   "Session notes",
		"content": "  Only trade the London open.  ",
	}, "", "", "", nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if string(svc.submitted.SourceData) != "Only trade the London open." {
		t.Fatalf("expected trimmed content, got %q", svc.submitted.SourceData)
	}
	if svc.submitted.MimeType != "text/plain" {
		t.Fatalf("unexpected mime type %q", svc.submitted.MimeType)
	}
}

func TestKnowledgeSubmitVideoRequiresFile(t *testing.T) {
	handler := KnowledgeSubmit(&stubKnowledgeService{}, nil)

	req := multipartRequest(t, "/v1/knowledge", map[string]string{
		"type":  "VIDEO",
		"title": "No file",
	}, "", "", "", nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestKnowledgeSubmitRequiresTitle(t *testing.T) {
	handler := KnowledgeSubmit(&stubKnowledgeService{}, nil)

	req := multipartRequest(t, "/v1/knowledge", map[string]string{
		"type":    "TEXT",
		"content": "notes",
	}, "", "", "", nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestKnowledgeListHidesSourceData(t *testing.T) {
	content := "learned content"
	svc := &stubKnowledgeService{rows: []models.KnowledgeItem{{
		ID:         uuid.New(),
		Title:      "EP 1",
		Type:       enums.KnowledgeTypeVideo,
		Status:     enums.KnowledgeLearned,
		Content:    &content,
		SourceData: []byte("raw bytes"),
	}}}
	handler := KnowledgeList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/knowledge", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if bytes.Contains(resp.Body.Bytes(), []byte("raw bytes")) {
		t.Fatal("source data leaked into the response")
	}

	var envelope struct {
		Data []knowledge.KnowledgeDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Content == nil || *envelope.Data[0].Content != content {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestKnowledgeDeleteAll(t *testing.T) {
	svc := &stubKnowledgeService{deleted: 4}
	handler := KnowledgeDeleteAll(svc, nil)

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/knowledge", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.deletedFor != userID {
		t.Fatalf("unexpected profile id %s", svc.deletedFor)
	}

	var envelope struct {
		Data knowledgeWipeResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Deleted != 4 {
		t.Fatalf("expected 4 deletions, got %d", envelope.Data.Deleted)
	}
}
