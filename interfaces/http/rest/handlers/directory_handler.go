package handlers

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"hazboun-backend/application/commands"
	"hazboun-backend/application/queries"
	"hazboun-backend/pkg/common"
	"hazboun-backend/pkg/errors"
)

// importField is the multipart field that carries an uploaded export file.
const importField = "file"

// DirectoryHandler handles whole-directory requests: status, reload, export
// and import.
type DirectoryHandler struct {
	responder
	commands       CommandDispatcher
	queries        QueryAsker
	maxImportBytes int64
	now            func() time.Time
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(cmds CommandDispatcher, qs QueryAsker, versioner Versioner, maxImportBytes int64, errs *errors.ErrorHandler, logger *zap.Logger) *DirectoryHandler {
	if maxImportBytes <= 0 {
		maxImportBytes = 10 << 20
	}
	return &DirectoryHandler{
		responder:      newResponder(errs, versioner, logger),
		commands:       cmds,
		queries:        qs,
		maxImportBytes: maxImportBytes,
		now:            time.Now,
	}
}

// Status handles GET /directory/status
func (h *DirectoryHandler) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.queries.Ask(r.Context(), queries.GetDirectoryStatusQuery{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, result, nil)
}

// Reload handles POST /directory/reload
func (h *DirectoryHandler) Reload(w http.ResponseWriter, r *http.Request) {
	result, err := h.commands.Dispatch(r.Context(), commands.ReloadDirectoryCommand{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, result, nil)
}

// Export handles GET /directory/export
func (h *DirectoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, err := h.queries.Ask(r.Context(), queries.ExportDirectoryQuery{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	file, ok := result.(*queries.ExportFile)
	if !ok {
		h.fail(w, r, errors.NewInternalError("unexpected export result"))
		return
	}
	common.RespondAttachment(w, file.FileName, file.ContentType, file.Data)
}

// Archive handles POST /directory/export/archive
func (h *DirectoryHandler) Archive(w http.ResponseWriter, r *http.Request) {
	result, err := h.commands.Dispatch(r.Context(), commands.ArchiveExportCommand{At: h.now()})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, result, nil)
}

// Import handles POST /directory/import. The body is either the raw export
// file or a multipart form with the file under "file".
func (h *DirectoryHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := h.readImport(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.commands.Dispatch(r.Context(), commands.ImportDirectoryCommand{Data: data})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("Directory imported via API", zap.Int("bytes", len(data)), zap.String("editor", editor(r)))
	h.respond(w, r, http.StatusOK, result, nil)
}

func (h *DirectoryHandler) readImport(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, errors.NewImportReadError(stderrors.New("empty request body"))
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImportBytes)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile(importField)
		if err != nil {
			return nil, importReadError(err)
		}
		defer file.Close()
		body = file
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, importReadError(err)
	}
	return data, nil
}

func importReadError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.NewValidationError("Import file is too large").WithCause(err)
	}
	return errors.NewImportReadError(err)
}
