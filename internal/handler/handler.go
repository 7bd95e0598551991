package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/internal/auth"
	"portfolio/internal/authclient"
	"portfolio/internal/imgcdn"
	"portfolio/internal/message"
	"portfolio/internal/photo"
	"portfolio/internal/sitemap"
	"portfolio/internal/store"
)

const categoriesCacheKey = "portfolio:categories"

type Handler struct {
	photos      *photo.Service
	messages    *message.Service
	authClient  *authclient.Client // nil if hosted auth not configured
	db          *store.DB
	redis       *store.Redis
	siteBaseURL string
}

func New(photos *photo.Service, messages *message.Service, authClient *authclient.Client, db *store.DB, redis *store.Redis, siteBaseURL string) *Handler {
	return &Handler{
		photos:      photos,
		messages:    messages,
		authClient:  authClient,
		db:          db,
		redis:       redis,
		siteBaseURL: siteBaseURL,
	}
}

// photoView decorates a photo with ready-to-use CDN transform URLs.
type photoView struct {
	photo.Photo
	ThumbURL   string `json:"thumb_url,omitempty"`
	DisplayURL string `json:"display_url,omitempty"`
}

func galleryView(photos []photo.Photo) []photoView {
	views := make([]photoView, len(photos))
	for i, p := range photos {
		src := p.ImageURL
		if p.ThumbnailURL != nil && *p.ThumbnailURL != "" {
			src = *p.ThumbnailURL
		}
		views[i] = photoView{Photo: p, ThumbURL: imgcdn.PresetURL(src, "thumbnail")}
	}
	return views
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	redisHealthy := h.redis.Healthy(c.Request.Context())
	dbHealthy := h.db != nil && h.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}

// ---------- Gallery ----------

// ListPhotos serves one gallery page, optionally filtered by category.
func (h *Handler) ListPhotos(c *gin.Context) {
	category := c.Query("category")
	if category == "all" {
		category = ""
	}
	page := 1
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page = parsed
		}
	}

	result, err := h.photos.ListPage(c.Request.Context(), category, page)
	if err != nil {
		log.Printf("list photos failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load photos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"photos":      galleryView(result.Photos),
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	})
}

// FeaturedPhotos serves the photos flagged for the featured section.
func (h *Handler) FeaturedPhotos(c *gin.Context) {
	photos, err := h.photos.Featured(c.Request.Context())
	if err != nil {
		log.Printf("featured photos failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load featured photos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": galleryView(photos)})
}

// ListCategories serves the distinct categories, cached briefly in redis.
func (h *Handler) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()
	if cached, ok := h.redis.CacheGet(ctx, categoriesCacheKey); ok {
		var categories []string
		if err := json.Unmarshal([]byte(cached), &categories); err == nil {
			c.JSON(http.StatusOK, gin.H{"categories": categories})
			return
		}
	}

	categories, err := h.photos.Categories(ctx)
	if err != nil {
		log.Printf("list categories failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}
	if categories == nil {
		categories = []string{}
	}
	if encoded, err := json.Marshal(categories); err == nil {
		h.redis.CacheSet(ctx, categoriesCacheKey, string(encoded), 5*time.Minute)
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetPhoto serves one photo plus its "more like this" suggestions.
func (h *Handler) GetPhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return
	}
	p, related, err := h.photos.Detail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, photo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
			return
		}
		log.Printf("photo detail %d failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load photo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"photo":   photoView{Photo: p, DisplayURL: imgcdn.PresetURL(p.ImageURL, "full")},
		"related": galleryView(related),
	})
}

// ---------- Contact ----------

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// Contact stores a visitor message from the contact form.
func (h *Handler) Contact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and message are required"})
		return
	}
	msg, err := h.messages.Submit(c.Request.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		if errors.Is(err, message.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("contact submit failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": msg.ID})
}

// ---------- Auth ----------

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

// Login performs a password sign-in against the hosted auth service. When
// the project has password logins disabled, it falls back to sending a
// magic link instead of dead-ending.
func (h *Handler) Login(c *gin.Context) {
	if h.authClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	session, err := h.authClient.PasswordSignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authclient.ErrEmailLoginDisabled) {
			if mlErr := h.authClient.SendMagicLink(c.Request.Context(), req.Email, h.siteBaseURL+"/admin"); mlErr != nil {
				log.Printf("magic link fallback failed: %v", mlErr)
				c.JSON(http.StatusBadGateway, gin.H{"error": "login failed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"magic_link_sent": true,
				"message":         "Email/password login is disabled. A magic link has been sent instead.",
			})
			return
		}
		if errors.Is(err, authclient.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		log.Printf("login failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"expires_in":    session.ExpiresIn,
	})
}

type magicLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// MagicLink emails a one-time login link.
func (h *Handler) MagicLink(c *gin.Context) {
	if h.authClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth not configured"})
		return
	}
	var req magicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if err := h.authClient.SendMagicLink(c.Request.Context(), req.Email, h.siteBaseURL+"/admin"); err != nil {
		log.Printf("magic link failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send magic link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"magic_link_sent": true})
}

// Logout revokes the caller's session.
func (h *Handler) Logout(c *gin.Context) {
	if h.authClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth not configured"})
		return
	}
	token := auth.BearerToken(c)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing bearer token"})
		return
	}
	if err := h.authClient.SignOut(c.Request.Context(), token); err != nil {
		log.Printf("logout failed: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"signed_out": true})
}

// ---------- Admin: photos ----------

// AdminPhotos serves the full photo list for the dashboard.
func (h *Handler) AdminPhotos(c *gin.Context) {
	photos, err := h.photos.All(c.Request.Context())
	if err != nil {
		log.Printf("admin photo list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load photos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": galleryView(photos)})
}

// CreatePhoto handles the admin upload form. Expects multipart form fields
// name, story, category, location, featured and the image under "file".
func (h *Handler) CreatePhoto(c *gin.Context) {
	in := photo.CreateInput{
		Name:     c.PostForm("name"),
		Story:    c.PostForm("story"),
		Category: c.PostForm("category"),
		Location: c.PostForm("location"),
		Featured: c.PostForm("featured") == "true",
	}

	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
			return
		}
		in.FileName = header.Filename
		in.Data = data
		in.ContentType = header.Header.Get("Content-Type")
	}

	created, err := h.photos.Create(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, photo.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("create photo failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to save photo"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

type updatePhotoRequest struct {
	Name     string `json:"name" binding:"required"`
	Story    string `json:"story" binding:"required"`
	Category string `json:"category" binding:"required"`
}

// UpdatePhoto applies the editable text fields of a photo.
func (h *Handler) UpdatePhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return
	}
	var req updatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, story and category are required"})
		return
	}
	if err := h.photos.UpdateDetails(c.Request.Context(), id, req.Name, req.Story, req.Category); err != nil {
		switch {
		case errors.Is(err, photo.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		case errors.Is(err, photo.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("update photo %d failed: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update photo"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// DeletePhoto removes the row and queues storage cleanup.
func (h *Handler) DeletePhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return
	}
	if err := h.photos.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, photo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
			return
		}
		log.Printf("delete photo %d failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete photo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ---------- Admin: messages ----------

func (h *Handler) AdminMessages(c *gin.Context) {
	messages, err := h.messages.List(c.Request.Context())
	if err != nil {
		log.Printf("admin message list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if messages == nil {
		messages = []message.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	if err := h.messages.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, message.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		log.Printf("delete message %d failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ---------- Sitemap ----------

// Sitemap serves sitemap XML for the static routes and every photo page.
func (h *Handler) Sitemap(c *gin.Context) {
	photos, err := h.photos.All(c.Request.Context())
	if err != nil {
		log.Printf("sitemap photo fetch failed: %v", err)
		c.String(http.StatusInternalServerError, "error generating sitemap")
		return
	}
	entries := make([]sitemap.Entry, len(photos))
	for i, p := range photos {
		entries[i] = sitemap.Entry{ID: p.ID, UpdatedAt: p.UpdatedAt}
	}
	body, err := sitemap.Build(h.siteBaseURL, entries, time.Now())
	if err != nil {
		log.Printf("sitemap build failed: %v", err)
		c.String(http.StatusInternalServerError, "error generating sitemap")
		return
	}
	c.Header("Cache-Control", "public, max-age=3600, s-maxage=3600")
	c.Data(http.StatusOK, "application/xml", body)
}
