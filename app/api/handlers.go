package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/okabe/codemart/app/catalog"
	"github.com/okabe/codemart/app/database"
	"github.com/okabe/codemart/app/marketplace"
	"github.com/okabe/codemart/app/secrets"
	"github.com/okabe/codemart/app/tasks"
)

func NewHandler(configCache *catalog.ConfigCache, productRepo database.ProductRepository,
	reviewRepo database.ReviewRepository, ingestor tasks.CatalogIngestor,
	scheduler tasks.TaskSchedulerInterface, searcher MarketplaceSearcher,
	secretsProvider secrets.Provider) *Handler {
	return &Handler{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		configCache: configCache,
		ingestor:    ingestor,
		scheduler:   scheduler,
		searcher:    searcher,
		secrets:     secretsProvider,
	}
}

func (h *Handler) ListProducts(c *gin.Context) {
	category := c.Query("category")
	query := c.Query("q")

	var products []database.Product
	var err error

	if category == "" && query == "" {
		products, err = h.productRepo.GetAllByPopularity(c.Request.Context())
	} else {
		products, err = h.productRepo.SearchProducts(c.Request.Context(), category, query)
	}

	if err != nil {
		slog.Error("Database error", "operation", "list_products", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := h.productRepo.GetProduct(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_product", "product", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// PurchaseProduct acknowledges a purchase request. Checkout is handled by an
// external payment flow; this endpoint only confirms the product is available.
func (h *Handler) PurchaseProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := h.productRepo.GetProduct(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "purchase_product", "product", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	slog.Info("Purchase acknowledged", "product", id, "title", product.Title)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": gin.H{
			"id":    product.ID,
			"title": product.Title,
			"price": product.Price,
		},
	})
}

func (h *Handler) ListReviews(c *gin.Context) {
	id := c.Param("id")

	product, err := h.productRepo.GetProduct(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_product", "product", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	reviews, err := h.reviewRepo.GetReviews(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_reviews", "product", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

type createReviewRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func (h *Handler) CreateReview(c *gin.Context) {
	id := c.Param("id")

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make([]string, 0, len(validationErrs))
			for _, fieldErr := range validationErrs {
				fields = append(fields, fieldErr.Field())
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review payload", "fields": fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review payload", "details": err.Error()})
		return
	}

	product, err := h.productRepo.GetProduct(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_product", "product", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	review, err := h.reviewRepo.CreateReview(c.Request.Context(), id, req.UserID, req.Rating, req.Comment)
	if err != nil {
		slog.Error("Database error", "operation", "create_review", "product", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *Handler) ListCategories(c *gin.Context) {
	slugs := catalog.Categories()

	categories := make([]gin.H, 0, len(slugs))
	for _, slug := range slugs {
		categories = append(categories, gin.H{
			"slug": slug,
			"name": catalog.DisplayName(slug),
		})
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if productCount, err := h.productRepo.GetProductCount(c.Request.Context()); err == nil {
		health["products"] = productCount
	}

	health["loaded_profiles"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"profiles":   h.configCache.GetConfigCount(),
		"categories": len(catalog.Categories()),
	}

	if productCount, err := h.productRepo.GetProductCount(c.Request.Context()); err == nil {
		stats["products"] = productCount
	}

	if reviewCount, err := h.reviewRepo.GetReviewCount(c.Request.Context()); err == nil {
		stats["reviews"] = reviewCount
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListProfiles(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	profiles := make([]map[string]interface{}, 0, len(configs))

	for _, profile := range configs {
		profiles = append(profiles, map[string]interface{}{
			"name":             profile.Name,
			"query":            profile.Query,
			"site":             profile.Site,
			"enabled":          profile.Settings.Enabled,
			"page_size":        profile.Settings.PageSize,
			"max_pages":        profile.Settings.MaxPages,
			"concurrency":      profile.Settings.Concurrency,
			"refresh_interval": (time.Duration(profile.Settings.RefreshInterval) * time.Second).String(),
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"total":    len(profiles),
	})
}

func (h *Handler) APIReloadProfile(c *gin.Context) {
	name := c.Param("name")

	profile, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading profile", "profile", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Failed to reload profile",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncCatalogTask(name, profile, h.ingestor)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "profile", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile reloaded and sync enqueued",
		"profile": gin.H{
			"name":    name,
			"query":   profile.Query,
			"enabled": profile.Settings.Enabled,
		},
		"task": gin.H{
			"id":   syncTask.ID,
			"type": syncTask.Type,
		},
	})
}

func (h *Handler) APISyncProfile(c *gin.Context) {
	name := c.Param("name")

	profile, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Profile not found", "profile", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	syncTask := tasks.NewSyncCatalogTask(name, profile, h.ingestor)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "profile", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task": gin.H{
			"id":   syncTask.ID,
			"type": syncTask.Type,
		},
	})
}

func (h *Handler) APIDeleteReview(c *gin.Context) {
	id := c.Param("id")

	if err := h.reviewRepo.DeleteReview(c.Request.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		slog.Error("Database error", "operation", "delete_review", "review", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// APIMarketplaceSearch proxies a single search page to the marketplace so
// operators can inspect raw results without exposing the API key.
func (h *Handler) APIMarketplaceSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing q parameter"})
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
			return
		}
		page = parsed
	}

	apiKey, err := h.secrets.GetAPIKey(c.Request.Context())
	if err != nil {
		slog.Error("Credential fetch failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Marketplace credentials unavailable"})
		return
	}

	opts := marketplace.SearchOptions{Site: c.Query("site")}
	items, err := h.searcher.Search(c.Request.Context(), apiKey, query, page, opts)
	if err != nil {
		slog.Error("Marketplace search failed", "query", query, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Marketplace search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
		"page":  page,
	})
}

func (h *Handler) APIMarketplaceKey(c *gin.Context) {
	apiKey, err := h.secrets.GetAPIKey(c.Request.Context())
	if err != nil {
		slog.Error("Credential fetch failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Marketplace credentials unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"apiKey": apiKey})
}
