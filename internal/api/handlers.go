package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/collaboreats/collaboreats/internal/forktree"
	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/timeparsing"
	"github.com/collaboreats/collaboreats/internal/types"
)

// maxListLimit caps ?limit on listing endpoints.
const maxListLimit = 500

// Handlers holds the dependencies of every route.
type Handlers struct {
	svc          *forktree.Service
	logger       *slog.Logger
	fetchTimeout time.Duration
	version      string
}

// NewHandlers returns handlers over svc. Zero fetchTimeout means no bound.
func NewHandlers(svc *forktree.Service, logger *slog.Logger, fetchTimeout time.Duration) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, logger: logger, fetchTimeout: fetchTimeout}
}

func (h *Handlers) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.fetchTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.fetchTimeout)
}

func (h *Handlers) log(c *gin.Context) *slog.Logger {
	return h.logger.With("request_id", c.GetString(requestIDKey))
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// HandleListRoots handles GET /recipes: root recipes, newest first.
// Query parameters: owner, since (e.g. "7d", "2024-01-01"), limit.
func (h *Handlers) HandleListRoots(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	filter.RootsOnly = true
	filter.OwnerID = c.Query("owner")
	h.list(c, filter)
}

// HandleListByOwner handles GET /recipes/user/:ownerId: every version the
// owner created, roots and forks alike.
func (h *Handlers) HandleListByOwner(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	filter.OwnerID = c.Param("ownerId")
	h.list(c, filter)
}

func (h *Handlers) listFilter(c *gin.Context) (types.RecipeFilter, bool) {
	filter := types.RecipeFilter{Sort: types.DefaultRecipeSortOptions()}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.badRequest(c, "limit must be a non-negative integer")
			return filter, false
		}
		filter.Limit = min(n, maxListLimit)
	}
	if raw := c.Query("since"); raw != "" {
		t, err := timeparsing.ParseSince(raw, time.Now())
		if err != nil {
			h.badRequest(c, "invalid since: "+err.Error())
			return filter, false
		}
		filter.CreatedAfter = &t
	}
	if raw := c.Query("sort"); raw != "" {
		if opts := types.ParseRecipeSortOrder(raw); len(opts) > 0 {
			filter.Sort = opts
		}
	}
	return filter, true
}

func (h *Handlers) list(c *gin.Context, filter types.RecipeFilter) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	recipes, err := h.svc.Store().ListRecipes(ctx, filter)
	if err != nil {
		h.fail(c, err, "list recipes")
		return
	}
	if recipes == nil {
		recipes = []*types.Recipe{}
	}
	c.JSON(http.StatusOK, ListResponse{Recipes: recipes, Count: len(recipes)})
}

// HandleCreate handles POST /recipes.
func (h *Handlers) HandleCreate(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	recipe := req.recipe()
	if err := h.svc.Store().CreateRecipe(ctx, recipe, req.OwnerID); err != nil {
		h.fail(c, err, "create recipe")
		return
	}
	h.log(c).Info("recipe created", "id", recipe.ID, "owner", recipe.OwnerID)
	c.JSON(http.StatusCreated, recipe)
}

// HandleGetTree handles GET /recipes/:id. Any version id is accepted; the
// response carries the whole tree that version belongs to.
func (h *Handlers) HandleGetTree(c *gin.Context) {
	id := c.Param("id")
	ctx, cancel := h.ctx(c)
	defer cancel()

	recipe, err := h.svc.Store().GetRecipe(ctx, id)
	if err != nil {
		h.fail(c, err, "get recipe")
		return
	}
	view, err := h.svc.Tree(ctx, recipe.RootID())
	if err != nil && !errors.Is(err, forktree.ErrIncomplete) {
		h.fail(c, err, "build tree")
		return
	}
	if len(view.Result.Diagnostics) > 0 {
		h.log(c).Warn("version tree has skipped records",
			"root", recipe.RootID(), "skipped", len(view.Result.Diagnostics))
	}

	resp := TreeResponse{
		Recipe:      recipe,
		Root:        view.Set.Root,
		RecipeTree:  view.Set.Records,
		Tree:        view.Result.Tree,
		Diagnostics: view.Result.Diagnostics,
		Stats:       view.Stats,
	}
	if resp.RecipeTree == nil {
		resp.RecipeTree = []*types.Recipe{}
	}
	status := http.StatusOK
	if err != nil {
		// Strict mode: the partial tree is still useful to the client.
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}

// HandleFork handles POST /recipes/:id/versions. The owner defaults to the
// X-Actor header when the body leaves it empty.
func (h *Handlers) HandleFork(c *gin.Context) {
	var req ForkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	draft := req.draft()
	if draft.OwnerID == "" {
		draft.OwnerID = c.GetHeader("X-Actor")
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	child, err := h.svc.Store().ForkRecipe(ctx, c.Param("id"), draft, draft.OwnerID)
	if err != nil {
		h.fail(c, err, "fork recipe")
		return
	}
	h.log(c).Info("recipe forked", "id", child.ID, "parent", child.ParentID, "owner", child.OwnerID)
	c.JSON(http.StatusCreated, child)
}

// HandleMostRecent handles GET /recipes/:id/recent.
func (h *Handlers) HandleMostRecent(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	rootID, ok := h.rootOf(ctx, c)
	if !ok {
		return
	}
	recent, err := h.svc.Store().MostRecentVersion(ctx, rootID)
	if err != nil {
		h.fail(c, err, "most recent version")
		return
	}
	c.JSON(http.StatusOK, recent)
}

// HandleMostForked handles GET /recipes/:id/mostForked.
func (h *Handlers) HandleMostForked(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	rootID, ok := h.rootOf(ctx, c)
	if !ok {
		return
	}
	fc, err := h.svc.Store().MostForkedVersion(ctx, rootID)
	if err != nil {
		h.fail(c, err, "most forked version")
		return
	}
	c.JSON(http.StatusOK, fc)
}

func (h *Handlers) rootOf(ctx context.Context, c *gin.Context) (string, bool) {
	r, err := h.svc.Store().GetRecipe(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err, "get recipe")
		return "", false
	}
	return r.RootID(), true
}

// HandleListComments handles GET /recipes/:id/comments.
func (h *Handlers) HandleListComments(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	comments, err := h.svc.Store().GetComments(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err, "get comments")
		return
	}
	if comments == nil {
		comments = []*types.Comment{}
	}
	c.JSON(http.StatusOK, comments)
}

// HandleAddComment handles POST /recipes/:id/comments.
func (h *Handlers) HandleAddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	comment, err := h.svc.Store().AddComment(ctx, c.Param("id"), req.Author, req.Text)
	if err != nil {
		h.fail(c, err, "add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     msg,
		Code:      "INVALID_REQUEST",
		RequestID: c.GetString(requestIDKey),
	})
}

// fail maps store and service errors onto status codes.
func (h *Handlers) fail(c *gin.Context, err error, op string) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, storage.ErrInvalid), errors.Is(err, storage.ErrNotRoot):
		status, code = http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, storage.ErrConflict):
		status, code = http.StatusConflict, "CONFLICT"
	case errors.Is(err, forktree.ErrIncomplete):
		status, code = http.StatusUnprocessableEntity, "INCOMPLETE_TREE"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "TIMEOUT"
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log(c).Error(op+" failed", "error", err)
		msg = op + " failed"
	} else {
		h.log(c).Debug(op+" rejected", "error", err, "status", status)
	}
	c.JSON(status, ErrorResponse{Error: msg, Code: code, RequestID: c.GetString(requestIDKey)})
}
