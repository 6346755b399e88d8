package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/revisit-app/revisit-agent/internal/bridge"
	"github.com/revisit-app/revisit-agent/internal/config"
	"github.com/revisit-app/revisit-agent/internal/gateway"
	"github.com/revisit-app/revisit-agent/internal/model"
	"github.com/revisit-app/revisit-agent/internal/scrape"
	"github.com/revisit-app/revisit-agent/internal/service"
)

type (
	// PageSnapshot is the page as the content script captured it. A
	// snapshot cannot be driven, so transcript panels must already be
	// expanded when it is taken.
	PageSnapshot struct {
		URL      string              `json:"url" validate:"required"`
		Title    string              `json:"title"`
		BodyText string              `json:"bodyText"`
		Meta     map[string]string   `json:"meta"`
		Nodes    map[string][]string `json:"nodes"`
	}

	AddBookmarkReq struct {
		Target string       `json:"target" validate:"required"`
		Page   PageSnapshot `json:"page" validate:"required"`
	}

	UpdateBookmarkReq struct {
		Title     *string  `json:"title"`
		Category  *string  `json:"category"`
		Summary   *string  `json:"summary"`
		UserNotes *string  `json:"userNotes"`
		Tags      []string `json:"tags"`
	}

	StatusReq struct {
		ActionType string `json:"actionType" validate:"required"`
	}

	GatewayKeyReq struct {
		APIKey string `json:"apiKey" validate:"required"`
	}

	ReplyReq struct {
		ID      string          `json:"id" validate:"required"`
		Payload json.RawMessage `json:"payload"`
	}

	StatusResp struct {
		Status   string          `json:"status"`
		Message  string          `json:"message,omitempty"`
		Bookmark *model.Bookmark `json:"bookmark,omitempty"`
	}

	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		svc    BookmarkService
		gw     Gateway
		hub    *MessageHub
		logger *zap.SugaredLogger
	}
)

// BookmarkService is what the surface needs from the orchestrator.
type BookmarkService interface {
	Add(ctx context.Context, target string, dom scrape.DOM) (*service.AddResult, error)
	Update(id string, upd service.BookmarkUpdate) (*model.Bookmark, error)
	Cancel(id string) error
	UpdateStatus(id, actionType string) (*model.Bookmark, error)
	Transcript(videoID string) (*model.Transcript, error)
	Snapshot() (*model.Data, error)
}

type Gateway interface {
	TestConnection(ctx context.Context, apiKey string) (gateway.ModelCatalog, error)
	Models(ctx context.Context, apiKey string) (gateway.ModelCatalog, error)
}

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, svc BookmarkService, gw Gateway, hub *MessageHub, logger *zap.SugaredLogger) *HTTPServer {
	instance := &HTTPServer{
		svc:    svc,
		gw:     gw,
		hub:    hub,
		logger: logger,
	}

	e := instance.router()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := e.Start(listen); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal("shutting down the server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return instance
}

func (s *HTTPServer) router() *echo.Echo {
	e := echo.New()

	bookmarkG := e.Group("/bookmark")
	bookmarkG.POST("", s.BookmarkAdd)
	bookmarkG.PATCH("/:id", s.BookmarkUpdate)
	bookmarkG.DELETE("/:id", s.BookmarkCancel)
	bookmarkG.POST("/:id/status", s.BookmarkStatus)

	e.GET("/data", s.DataGet)
	e.GET("/transcript/:videoId", s.TranscriptGet)

	gatewayG := e.Group("/gateway")
	gatewayG.POST("/test", s.GatewayTest)
	gatewayG.POST("/models", s.GatewayModels)

	bridgeG := e.Group("/bridge")
	bridgeG.GET("/:target/poll", s.BridgePoll)
	bridgeG.POST("/:target/reply", s.BridgeReply)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	echo.NotFoundHandler = func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	}

	return e
}

// BookmarkAdd runs the whole pipeline for a captured page. The preliminary
// record survives enrichment failures, so those come back alongside the
// bookmark instead of replacing it.
func (s *HTTPServer) BookmarkAdd(c echo.Context) error {
	req := AddBookmarkReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := s.svc.Add(c.Request().Context(), req.Target, snapshotDOM{page: req.Page})
	if err != nil {
		if res != nil {
			return c.JSON(errStatus(err), StatusResp{
				Status:   "error",
				Message:  err.Error(),
				Bookmark: &res.Bookmark,
			})
		}
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, StatusResp{Status: "success", Bookmark: &res.Bookmark})
}

func (s *HTTPServer) BookmarkUpdate(c echo.Context) error {
	id, err := GetParam(c, "id")
	if err != nil {
		return err
	}

	req := UpdateBookmarkReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	bm, err := s.svc.Update(id, service.BookmarkUpdate{
		Title:     req.Title,
		Category:  req.Category,
		Summary:   req.Summary,
		UserNotes: req.UserNotes,
		Tags:      req.Tags,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, StatusResp{Status: "success", Bookmark: bm})
}

func (s *HTTPServer) BookmarkCancel(c echo.Context) error {
	id, err := GetParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.svc.Cancel(id); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) BookmarkStatus(c echo.Context) error {
	id, err := GetParam(c, "id")
	if err != nil {
		return err
	}

	req := StatusReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	bm, err := s.svc.UpdateStatus(id, req.ActionType)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, StatusResp{Status: "success", Bookmark: bm})
}

func (s *HTTPServer) DataGet(c echo.Context) error {
	data, err := s.svc.Snapshot()
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

func (s *HTTPServer) TranscriptGet(c echo.Context) error {
	videoID, err := GetParam(c, "videoId")
	if err != nil {
		return err
	}

	tr, err := s.svc.Transcript(videoID)
	if err != nil {
		return s.fail(c, err)
	}
	if tr == nil {
		return c.NoContent(http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, tr)
}

func (s *HTTPServer) GatewayTest(c echo.Context) error {
	req := GatewayKeyReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	catalog, err := s.gw.TestConnection(c.Request().Context(), req.APIKey)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, catalog)
}

func (s *HTTPServer) GatewayModels(c echo.Context) error {
	req := GatewayKeyReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	catalog, err := s.gw.Models(c.Request().Context(), req.APIKey)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, catalog)
}

// BridgePoll parks the content script's long poll until a message is
// pending or the window closes empty.
func (s *HTTPServer) BridgePoll(c echo.Context) error {
	target, err := GetParam(c, "target")
	if err != nil {
		return err
	}

	env, err := s.hub.Dequeue(c.Request().Context(), target)
	if err != nil {
		return c.NoContent(http.StatusRequestTimeout)
	}
	if env == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, env)
}

func (s *HTTPServer) BridgeReply(c echo.Context) error {
	req := ReplyReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.hub.Reply(req.ID, req.Payload); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) fail(c echo.Context, err error) error {
	s.logger.Errorw("request failed", "path", c.Path(), "err", err)
	return c.JSON(errStatus(err), StatusResp{Status: "error", Message: err.Error()})
}

func errStatus(err error) int {
	cause := errors.Cause(err)
	switch cause.(type) {
	case *gateway.AuthenticationError:
		return http.StatusUnauthorized
	case *gateway.RateLimitError:
		return http.StatusTooManyRequests
	case *gateway.InvalidRequestError:
		return http.StatusBadRequest
	case *bridge.DeliveryError:
		return http.StatusBadGateway
	}
	switch cause {
	case service.ErrBookmarkNotFound:
		return http.StatusNotFound
	case gateway.ErrAPIKeyMissing, gateway.ErrConfigMissing:
		return http.StatusUnauthorized
	case bridge.ErrNotResponding:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// snapshotDOM adapts a submitted page snapshot to the scraping seam.
// Click is a no-op: nothing new can appear in a frozen snapshot.
type snapshotDOM struct {
	page PageSnapshot
}

func (d snapshotDOM) URL() string      { return d.page.URL }
func (d snapshotDOM) Title() string    { return d.page.Title }
func (d snapshotDOM) BodyText() string { return d.page.BodyText }

func (d snapshotDOM) Meta(name string) string { return d.page.Meta[name] }

func (d snapshotDOM) Exists(selector string) bool {
	_, ok := d.page.Nodes[selector]
	return ok
}

func (d snapshotDOM) Click(string) error { return nil }

func (d snapshotDOM) Text(selector string) []string { return d.page.Nodes[selector] }

////////

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}
