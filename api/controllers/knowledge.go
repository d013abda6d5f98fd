package controllers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/api/responses"
	"github.com/algobros/terminal-backend/internal/knowledge"
	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
)

const (
	// Video uploads go to the extraction worker whole, so the cap matches
	// what the model accepts inline.
	maxKnowledgeUploadBytes = 64 << 20
	multipartMemoryBytes    = 8 << 20
)

type knowledgeSubmitter interface {
	Submit(ctx context.Context, dto knowledge.SubmitKnowledgeDTO) (*models.KnowledgeItem, error)
	List(ctx context.Context, profileID uuid.UUID) ([]models.KnowledgeItem, error)
	DeleteAll(ctx context.Context, profileID uuid.UUID) (int64, error)
}

// KnowledgeSubmit accepts a multipart upload: `type` (VIDEO, DOCX or TEXT),
// `title`, and either a `file` part or a `content` field.
func KnowledgeSubmit(svc knowledgeSubmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "knowledge service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxKnowledgeUploadBytes)
		if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		kind, err := enums.ParseKnowledgeType(strings.TrimSpace(r.FormValue("type")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "type must be VIDEO, DOCX or TEXT"))
			return
		}

		title := strings.TrimSpace(r.FormValue("title"))
		if title == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "title is required"))
			return
		}

		dto := knowledge.SubmitKnowledgeDTO{
			ProfileID: userID,
			Type:      kind,
			Title:     title,
		}

		switch kind {
		case enums.KnowledgeTypeVideo, enums.KnowledgeTypeDocx:
			file, header, err := r.FormFile("file")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "video and docx uploads require a file part"))
				return
			}
			defer file.Close()

			data, err := io.ReadAll(file)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading upload"))
				return
			}
			dto.SourceData = data
			dto.MimeType = header.Header.Get("Content-Type")
			if kind == enums.KnowledgeTypeDocx && dto.MimeType == "" {
				dto.MimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
			}
		case enums.KnowledgeTypeText:
			content := strings.TrimSpace(r.FormValue("content"))
			if content == "" {
				if file, _, err := r.FormFile("file"); err == nil {
					data, readErr := io.ReadAll(file)
					file.Close()
					if readErr != nil {
						responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, readErr, "reading upload"))
						return
					}
					content = strings.TrimSpace(string(data))
				}
			}
			if content == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "text submissions require content"))
				return
			}
			dto.SourceData = []byte(content)
			dto.MimeType = "text/plain"
		}

		created, err := svc.Submit(r.Context(), dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, knowledge.FromModel(created))
	}
}

// KnowledgeList returns the caller's knowledge base, newest first.
func KnowledgeList(svc knowledgeSubmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "knowledge service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, knowledge.FromModels(rows))
	}
}

type knowledgeWipeResponse struct {
	Deleted int64 `json:"deleted"`
}

// KnowledgeDeleteAll wipes the caller's knowledge base as a whole.
func KnowledgeDeleteAll(svc knowledgeSubmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "knowledge service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deleted, err := svc.DeleteAll(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, knowledgeWipeResponse{Deleted: deleted})
	}
}
