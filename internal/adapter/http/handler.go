package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nextstep-cv/internal/domain"
	"nextstep-cv/internal/form"
	"nextstep-cv/internal/importer"
	"nextstep-cv/internal/session"
	"nextstep-cv/internal/theme"
	"nextstep-cv/internal/usecase"
	"nextstep-cv/pkg/apperror"
	"nextstep-cv/pkg/logger"
)

const historyLimit = 5

var tooManyEntriesMsg = fmt.Sprintf("A section can hold at most %d entries.", form.MaxEntries)

type Submitter interface {
	Submit(ctx context.Context, username string, f *form.Form) (*usecase.Document, error)
}

type Exporter interface {
	Export(ctx context.Context, f *form.Form) (*usecase.Document, error)
}

type History interface {
	RecentForUser(ctx context.Context, username string, limit int) ([]domain.Submission, error)
}

type Handler struct {
	sessions  *session.Manager
	importer  *importer.Importer
	submitter Submitter
	exporter  Exporter
	history   History
	timeout   time.Duration
	log       logger.Logger
}

func NewHandler(sessions *session.Manager, im *importer.Importer, s Submitter, e Exporter, hist History, timeout time.Duration, log logger.Logger) *Handler {
	return &Handler{
		sessions:  sessions,
		importer:  im,
		submitter: s,
		exporter:  e,
		history:   hist,
		timeout:   timeout,
		log:       log,
	}
}

// base fills the fields every page shows.
func (h *Handler) base(c *fiber.Ctx, title string) view {
	ctx := c.UserContext()
	kv := clientStore(c)
	dark, err := theme.New(kv).IsDark(ctx, c.Get(theme.PreferenceHeader))
	if err != nil {
		h.log.Warn("read theme", zap.Error(err))
	}
	username, _ := h.sessions.For(kv).Username(ctx)
	return view{Title: title, Dark: dark, Username: username, Flash: popFlash(c)}
}

func (h *Handler) remoteContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.timeout)
}

func (h *Handler) fail(c *fiber.Ctx, page string, v view, err error, fallback string) error {
	h.log.Error("request failed", err, zap.String("path", c.Path()))
	v.Error = apperror.UserMessage(err, fallback)
	return render(c, apperror.ToHTTPStatus(err), page, v)
}

func (h *Handler) Landing(c *fiber.Ctx) error {
	v := h.base(c, "")
	v.Features = features
	v.Accept = acceptAttr()
	return render(c, fiber.StatusOK, pageLanding, v)
}

func (h *Handler) Import(c *fiber.Ctx) error {
	var uploads []importer.Upload
	if mf, err := c.MultipartForm(); err == nil {
		owner, _ := c.Locals(localsClientID).(string)
		for _, fh := range mf.File["file"] {
			uploads = append(uploads, toUpload(fh, owner))
		}
	}

	ctx, cancel := h.remoteContext(c)
	defer cancel()
	res, err := h.importer.Select(ctx, uploads)
	if err != nil {
		v := h.base(c, "")
		v.Features = features
		v.Accept = acceptAttr()
		return h.fail(c, pageLanding, v, err, "Error processing file. Please try again.")
	}
	if !res.Navigate {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.Redirect(res.Location, fiber.StatusSeeOther)
}

func toUpload(fh *multipart.FileHeader, owner string) importer.Upload {
	return importer.Upload{
		Owner:       owner,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

func (h *Handler) ToggleTheme(c *fiber.Ctx) error {
	if _, err := theme.New(clientStore(c)).Toggle(c.UserContext(), c.Get(theme.PreferenceHeader)); err != nil {
		h.log.Error("toggle theme", err)
	}
	return c.RedirectBack("/", fiber.StatusSeeOther)
}

func (h *Handler) AuthPage(c *fiber.Ctx) error {
	if h.sessions.For(clientStore(c)).IsAuthenticated(c.UserContext()) {
		return c.Redirect("/create", fiber.StatusSeeOther)
	}
	v := h.base(c, "Log in")
	if c.Query("mode") == "signup" {
		v.Title = "Sign up"
		v.Signup = true
	}
	return render(c, fiber.StatusOK, pageAuth, v)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	ctx, cancel := h.remoteContext(c)
	defer cancel()

	res, err := h.sessions.For(clientStore(c)).Login(ctx, c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		v := h.base(c, "Log in")
		v.Input = authInput{Username: c.FormValue("username")}
		return h.fail(c, pageAuth, v, err, session.LoginFailed)
	}
	if res.Message != "" {
		setFlash(c, res.Message)
	}
	return c.Redirect("/create", fiber.StatusSeeOther)
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	ctx, cancel := h.remoteContext(c)
	defer cancel()

	res, err := h.sessions.For(clientStore(c)).Signup(ctx, c.FormValue("username"), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		v := h.base(c, "Sign up")
		v.Signup = true
		v.Input = authInput{Username: c.FormValue("username"), Email: c.FormValue("email")}
		return h.fail(c, pageAuth, v, err, session.SignupFailed)
	}
	if res.Message != "" {
		setFlash(c, res.Message)
	}
	return c.Redirect("/create", fiber.StatusSeeOther)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.For(clientStore(c)).Logout(c.UserContext()); err != nil {
		h.log.Error("logout", err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) createView(c *fiber.Ctx, f *form.Form) view {
	v := h.base(c, "Create your resume")
	v.Form = f
	if h.history != nil && v.Username != "" {
		hist, err := h.history.RecentForUser(c.UserContext(), v.Username, historyLimit)
		if err != nil {
			h.log.Warn("load submission history", zap.Error(err))
		}
		v.History = hist
	}
	return v
}

func (h *Handler) CreatePage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, pageCreate, h.createView(c, form.New()))
}

// CreateAction handles every button on the resume form. The draft lives
// only in the posted values, so each response re-renders it in full.
func (h *Handler) CreateAction(c *fiber.Ctx) error {
	values := postedValues(c)
	f, err := form.ParseValues(values)
	if err != nil {
		// f still holds everything that could be read
		msg := "Some fields could not be read; please review the form."
		if errors.Is(err, form.ErrTooManyEntries) {
			msg = tooManyEntriesMsg + " Extra entries were dropped; please review the form."
		}
		return h.fail(c, pageCreate, h.createView(c, f), apperror.NewInvalidInput(msg, "parse form", err), "")
	}

	switch action := values.Get("action"); action {
	case "generate":
		username, _ := h.sessions.For(clientStore(c)).Username(c.UserContext())
		ctx, cancel := h.remoteContext(c)
		defer cancel()
		doc, err := h.submitter.Submit(ctx, username, f)
		if err != nil {
			return h.fail(c, pageCreate, h.createView(c, f), err, "Failed to generate and download resume.")
		}
		return sendDocument(c, doc)

	case "export":
		ctx, cancel := h.remoteContext(c)
		defer cancel()
		doc, err := h.exporter.Export(ctx, f)
		if err != nil {
			return h.fail(c, pageCreate, h.createView(c, f), err, "Failed to export resume.")
		}
		return sendDocument(c, doc)

	case "":
		return render(c, fiber.StatusOK, pageCreate, h.createView(c, f))

	default:
		if err := f.Apply(action); err != nil {
			v := h.createView(c, f)
			switch {
			case errors.Is(err, form.ErrLastElement):
				v.Error = "Each section needs at least one entry."
			case errors.Is(err, form.ErrTooManyEntries):
				v.Error = tooManyEntriesMsg
			default:
				v.Error = "That action is not available."
			}
			h.log.Debug("form action rejected", zap.String("action", action), zap.Error(err))
			return render(c, fiber.StatusUnprocessableEntity, pageCreate, v)
		}
		return render(c, fiber.StatusOK, pageCreate, h.createView(c, f))
	}
}

func postedValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		values.Add(string(k), string(v))
	})
	return values
}

func sendDocument(c *fiber.Ctx, doc *usecase.Document) error {
	c.Attachment(doc.Filename)
	c.Set(fiber.HeaderContentType, doc.ContentType)
	return c.Status(fiber.StatusOK).Send(doc.Bytes)
}

func (h *Handler) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
