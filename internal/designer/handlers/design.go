package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"circuitee/internal/designer/engine"
	"circuitee/internal/designer/graph"
	"circuitee/internal/designer/importer"
	"circuitee/internal/designer/mapper"
	"circuitee/internal/designer/models"
	"circuitee/internal/designer/parser"
	"circuitee/internal/designer/service"
	"circuitee/internal/designer/share"
	"circuitee/internal/storage"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// Design Handler
// ============================================================

type DesignHandler struct {
	sessions     *service.SessionManager
	kv           storage.KV
	shareBaseURL string
}

func NewDesignHandler(sessions *service.SessionManager, kv storage.KV, shareBaseURL string) *DesignHandler {
	return &DesignHandler{
		sessions:     sessions,
		kv:           kv,
		shareBaseURL: shareBaseURL,
	}
}

type sessionResponse struct {
	ID   string      `json:"id"`
	View engine.View `json:"view"`
}

type commandResponse struct {
	Event engine.Event `json:"event"`
	View  engine.View  `json:"view"`
}

type importResponse struct {
	Records  int      `json:"records"`
	Points   int      `json:"points"`
	Linears  int      `json:"linears"`
	Switches int      `json:"switches"`
	Warnings []string `json:"warnings,omitempty"`
}

type shareResponse struct {
	Blob string `json:"blob"`
	URL  string `json:"url"`
}

// Create opens a session, empty or loaded from a share blob or link.
func (h *DesignHandler) Create(c fiber.Ctx) error {
	var req createRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
		if err := validateStruct(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	var design *models.Design
	if req.Blob != "" {
		blob, linkMode, err := share.ParseShareURL(req.Blob)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		d, err := share.Load(context.Background(), h.kv, blob)
		if err != nil {
			log.Warnf("[DESIGN] load blob: %v", err)
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if linkMode != "" {
			d.Mode = linkMode
		}
		design = &d
	}
	if design != nil && req.Mode != "" {
		design.Mode = models.Mode(req.Mode)
	}

	session, err := h.sessions.Create(design)
	if err != nil {
		return h.fail(c, err)
	}
	if design == nil && req.Mode == string(models.ModeTest) {
		err := session.Do(func(e *engine.Engine) error {
			_, err := e.Dispatch(engine.SetMode{Mode: models.ModeTest})
			return err
		})
		if err != nil {
			_ = h.sessions.Close(session.ID)
			return h.fail(c, err)
		}
	}

	log.Infof("[DESIGN] session %s created", session.ID)
	return c.Status(http.StatusCreated).JSON(sessionResponse{
		ID:   session.ID,
		View: h.view(session),
	})
}

func (h *DesignHandler) Get(c fiber.Ctx) error {
	session, err := h.sessions.Resolve(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sessionResponse{ID: session.ID, View: h.view(session)})
}

// Command dispatches one validated command and returns the resulting view.
func (h *DesignHandler) Command(c fiber.Ctx) error {
	session, err := h.sessions.Resolve(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}
	var req commandRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if err := validateStruct(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	cmd, err := req.toCommand()
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var resp commandResponse
	err = session.Do(func(e *engine.Engine) error {
		ev, err := e.Dispatch(cmd)
		resp.Event = ev
		resp.View = e.View()
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// Import parses an uploaded CSV export and arms the reference tool. The two
// reference points then arrive as canvas_click commands.
func (h *DesignHandler) Import(c fiber.Ctx) error {
	session, err := h.sessions.Resolve(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "file required in multipart/form-data",
		})
	}
	log.Infof("[IMPORT] file received: %s, size: %d", file.Filename, file.Size)

	f, err := file.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer f.Close()

	export, err := parser.ParseCSV(f)
	if err != nil {
		log.Warnf("[IMPORT] parse: %v", err)
		return h.fail(c, err)
	}

	err = session.Do(func(e *engine.Engine) error {
		_, err := e.Dispatch(engine.BeginImport{Export: export})
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(http.StatusAccepted).JSON(importResponse{
		Records:  export.Len(),
		Points:   len(export.Points),
		Linears:  len(export.Linears),
		Switches: len(export.Switches),
		Warnings: export.Warnings,
	})
}

func (h *DesignHandler) Share(c fiber.Ctx) error {
	session, err := h.sessions.Resolve(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	blob, err := session.Blob()
	if err != nil {
		return h.fail(c, err)
	}
	link, err := share.ShareURL(h.shareBaseURL, blob)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(shareResponse{Blob: blob, URL: link})
}

func (h *DesignHandler) Delete(c fiber.Ctx) error {
	if err := h.sessions.Close(c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *DesignHandler) view(s *service.Session) engine.View {
	var v engine.View
	_ = s.Do(func(e *engine.Engine) error {
		v = e.View()
		return nil
	})
	return v
}

// fail maps domain errors onto HTTP statuses.
func (h *DesignHandler) fail(c fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, graph.ErrElementNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrWrongMode),
		errors.Is(err, engine.ErrNoPendingImport),
		errors.Is(err, engine.ErrNotDragging):
		status = http.StatusConflict
	case errors.Is(err, graph.ErrInvalidConnection),
		errors.Is(err, graph.ErrNotLight),
		errors.Is(err, graph.ErrInvalidKind),
		errors.Is(err, graph.ErrInvariant),
		errors.Is(err, engine.ErrInvalidTool),
		errors.Is(err, engine.ErrInvalidMode),
		errors.Is(err, engine.ErrNotSwitch),
		errors.Is(err, engine.ErrInvalidPlacement),
		errors.Is(err, engine.ErrEmptyExport),
		errors.Is(err, engine.ErrUnknownCommand),
		errors.Is(err, mapper.ErrDegenerateReference),
		errors.Is(err, importer.ErrReferencesIncomplete),
		errors.Is(err, parser.ErrMissingReference),
		errors.Is(err, parser.ErrDuplicateReference),
		errors.Is(err, share.ErrInvalidBlob):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.Errorf("[DESIGN] %v", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
