package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sheethub/application/services"
	"sheethub/domain/workbook"
	"sheethub/infrastructure/spreadsheet"
	"sheethub/pkg/common"
	apperrors "sheethub/pkg/errors"
	"sheethub/pkg/utils"
)

const maxImportBytes = 32 << 20 // 32 MiB

// WorkbookHandler handles the session CRUD and import/export endpoints.
type WorkbookHandler struct {
	workbooks *services.WorkbookService
	exports   *services.ExportService
	logger    *zap.Logger
}

// NewWorkbookHandler creates a new workbook handler.
func NewWorkbookHandler(
	workbooks *services.WorkbookService,
	exports *services.ExportService,
	logger *zap.Logger,
) *WorkbookHandler {
	return &WorkbookHandler{
		workbooks: workbooks,
		exports:   exports,
		logger:    logger,
	}
}

// ImportRequest represents the request body for a JSON import
type ImportRequest struct {
	Sheets []workbook.Sheet `json:"sheets" validate:"required,min=1"`
}

// ExportRequest represents the request body for an export
type ExportRequest struct {
	Format   string `json:"format,omitempty" validate:"omitempty,oneof=xlsx csv"`
	FileName string `json:"fileName,omitempty" validate:"omitempty,max=128"`
}

// CreateWorkbookResponse carries the share code of a new session
type CreateWorkbookResponse struct {
	ShareCode string `json:"shareCode"`
}

// ExportResponse carries the download location of an exported file
type ExportResponse struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}

// CreateWorkbook handles POST /create
func (h *WorkbookHandler) CreateWorkbook(w http.ResponseWriter, r *http.Request) {
	shareCode, err := h.workbooks.Create(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, CreateWorkbookResponse{ShareCode: shareCode})
}

// GetWorkbook handles GET /workbook/{shareCode}
func (h *WorkbookHandler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	shareCode := chi.URLParam(r, "shareCode")

	sheets, err := h.workbooks.Get(r.Context(), shareCode)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, sheets)
}

// ImportWorkbook handles POST /import/{shareCode}
func (h *WorkbookHandler) ImportWorkbook(w http.ResponseWriter, r *http.Request) {
	shareCode := chi.URLParam(r, "shareCode")

	var req ImportRequest
	if err := common.ParseJSONBody(r, &req, maxImportBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.workbooks.Import(r.Context(), shareCode, req.Sheets); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, CreateWorkbookResponse{ShareCode: shareCode})
}

// ImportWorkbookFile handles POST /import/{shareCode}/file with a
// multipart xlsx or csv upload decoded server-side.
func (h *WorkbookHandler) ImportWorkbookFile(w http.ResponseWriter, r *http.Request) {
	shareCode := chi.URLParam(r, "shareCode")

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Missing file field")
		return
	}
	defer file.Close()

	var sheets []workbook.Sheet
	base := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx":
		sheets, err = spreadsheet.DecodeXLSX(file)
	case ".csv":
		sheets, err = spreadsheet.DecodeCSV(file, base)
	default:
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Only xlsx and csv files are supported")
		return
	}
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.workbooks.Import(r.Context(), shareCode, sheets); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, CreateWorkbookResponse{ShareCode: shareCode})
}

// ExportWorkbook handles POST /export/{shareCode}
func (h *WorkbookHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, chi.URLParam(r, "shareCode"))
}

// ExportDefault handles the legacy POST /export against the default
// session.
func (h *WorkbookHandler) ExportDefault(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.defaultShareCode())
}

func (h *WorkbookHandler) export(w http.ResponseWriter, r *http.Request, shareCode string) {
	req := ExportRequest{Format: spreadsheet.FormatXLSX, FileName: "sheethub-export"}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
			return
		}
	}
	if req.Format == "" {
		req.Format = spreadsheet.FormatXLSX
	}
	if req.FileName == "" {
		req.FileName = "sheethub-export"
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	fileName, err := h.exports.Export(r.Context(), shareCode, req.FileName, req.Format)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ExportResponse{
		FileURL:  "/exports/" + fileName,
		FileName: fileName,
	})
}

// GetDefault handles the legacy GET / returning the default session.
func (h *WorkbookHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.workbooks.Get(r.Context(), h.defaultShareCode())
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			common.RespondJSON(w, http.StatusOK, []workbook.Sheet{})
			return
		}
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, sheets)
}

// ResetDefault handles the legacy GET /init, reinitializing the default
// session to a single empty sheet.
func (h *WorkbookHandler) ResetDefault(w http.ResponseWriter, r *http.Request) {
	if err := h.workbooks.Reset(r.Context(), h.defaultShareCode()); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *WorkbookHandler) defaultShareCode() string {
	return "default"
}

func (h *WorkbookHandler) respondError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusOf(err)
	code := "INTERNAL_ERROR"
	message := "Internal server error"

	if appErr, ok := apperrors.AsAppError(err); ok {
		code = string(appErr.Type)
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	common.RespondError(w, status, code, message)
}
