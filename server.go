package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/graph"
	"github.com/meridianlegal/practice_backend/middlewares"
	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/models/reports"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/meridianlegal/practice_backend/workflow"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func getRedisClient(redisAddress string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
}

// RateLimiter is a fixed-window counter backed by redis.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := "ratelimit:" + c.ClientIP()
	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		// redis down: fail open, the advisory locks still protect the store
		c.Next()
		return
	}
	if count == 1 {
		rl.client.Expire(c.Request.Context(), key, rl.window)
	}
	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}
	c.Next()
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// respondError maps the error taxonomy onto HTTP statuses. Retryable
// transaction failures come back as 503 so the client may retry idempotently.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case utils.IsValidationError(err), utils.IsConfigurationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case utils.IsPermissionError(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case utils.IsCaseNotApprovedError(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case utils.IsRetryable(err):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary conflict, retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, ginErr := range c.Errors {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"path":           c.Request.URL.Path,
				"correlation_id": cid,
			}).Error(ginErr.Error())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func loginHandler() gin.HandlerFunc {
	type loginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		token, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		models.Logout(c.Request.Context())
		c.Status(http.StatusNoContent)
	}
}

func requireAuth(c *gin.Context) bool {
	if _, ok := utils.GetFirmIdFromContext(c.Request.Context()); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	return true
}

func createCaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		var input models.NewCase
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		kase, err := models.CreateCase(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, kase)
	}
}

func listCasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		var status *models.CaseStatus
		if v := c.Query("status"); v != "" {
			s := models.CaseStatus(v)
			status = &s
		}
		var billingType *models.BillingType
		if v := c.Query("billing_type"); v != "" {
			t := models.BillingType(v)
			billingType = &t
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		cases, err := models.GetCases(c.Request.Context(), status, billingType, limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cases)
	}
}

func caseIdParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return 0, false
	}
	return id, true
}

func getCaseOverviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		overview, err := graph.GetCaseOverview(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if overview == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

func updateBillingConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		var patch models.BillingConfigPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		kase, err := models.UpdateBillingConfig(c.Request.Context(), id, &patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, kase)
	}
}

func changeBillingAmountHandler() gin.HandlerFunc {
	type changeAmountRequest struct {
		NewAmount decimal.Decimal `json:"new_amount" binding:"required"`
		Notes     string          `json:"notes"`
	}
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		var req changeAmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		kase, err := workflow.ChangeBillingAmount(c.Request.Context(), id, req.NewAmount, req.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, kase)
	}
}

func updateCaseRatesHandler() gin.HandlerFunc {
	type updateRatesRequest struct {
		CustomRates models.RateCard `json:"custom_rates"`
	}
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		var req updateRatesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		kase, err := workflow.UpdateCaseRates(c.Request.Context(), id, req.CustomRates)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, kase)
	}
}

func archiveCaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		kase, err := models.ArchiveCase(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, kase)
	}
}

func updateCaseStatusHandler() gin.HandlerFunc {
	type statusRequest struct {
		Status models.CaseStatus `json:"status" binding:"required"`
	}
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		kase, err := models.UpdateCaseStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, kase)
	}
}

func submitApprovalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		approval, err := workflow.SubmitCaseForApproval(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, approval)
	}
}

func approveCaseHandler() gin.HandlerFunc {
	type reviewRequest struct {
		Note string `json:"note"`
	}
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		var req reviewRequest
		_ = c.ShouldBindJSON(&req)
		approval, err := workflow.ApproveCase(c.Request.Context(), id, req.Note)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, approval)
	}
}

func rejectCaseHandler() gin.HandlerFunc {
	type rejectRequest struct {
		Reason string `json:"reason" binding:"required"`
	}
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		var req rejectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
			return
		}
		approval, err := workflow.RejectCase(c.Request.Context(), id, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, approval)
	}
}

func pendingApprovalsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		roleStr, _ := utils.GetUserRoleFromContext(c.Request.Context())
		if !models.UserRole(roleStr).CanReviewApprovals() {
			c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
			return
		}
		approvals, err := models.GetPendingApprovals(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, approvals)
	}
}

func logTimeEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		var input models.NewTimeEntry
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		entry, err := models.CreateTimeEntry(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func listTimeEntriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		entries, err := models.GetTimeEntriesByCase(c.Request.Context(), id, nil, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func caseFinancialsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		financials, err := models.ComputeCaseFinancialsById(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, financials)
	}
}

func billingHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := caseIdParam(c)
		if !ok {
			return
		}
		var since *time.Time
		if v := c.Query("since"); v != "" {
			parsed, err := time.Parse(time.RFC3339, v)
			if err != nil {
				parsed, err = time.Parse("2006-01-02", v)
			}
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339 or YYYY-MM-DD"})
				return
			}
			since = &parsed
		}
		limit, _ := strconv.Atoi(c.Query("limit"))
		offset, _ := strconv.Atoi(c.Query("offset"))
		rows, err := models.GetBillingHistoryByCase(c.Request.Context(), id, since, limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.BuildBillingFeed(rows))
	}
}

func createInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		var input models.NewInvoice
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		invoice, err := workflow.CreateInvoice(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, invoice)
	}
}

func invoiceTransitionHandler(pay bool) gin.HandlerFunc {
	type cancelRequest struct {
		Note string `json:"note"`
	}
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
			return
		}
		var invoice *models.Invoice
		if pay {
			invoice, err = workflow.MarkInvoicePaid(c.Request.Context(), id)
		} else {
			var req cancelRequest
			_ = c.ShouldBindJSON(&req)
			invoice, err = workflow.CancelInvoice(c.Request.Context(), id, req.Note)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

// billingLedgerExportHandler takes a best-effort redis lock so two concurrent
// exports of the same firm don't both hammer the ledger table. The export is
// read-only, so losing the lock only costs duplicate work, never correctness.
func billingLedgerExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		logger := config.GetLogger()
		firmId, _ := utils.GetFirmIdFromContext(c.Request.Context())

		var lock *redislock.Lock
		if locker := config.GetRedisLock(); locker != nil {
			var err error
			lock, err = locker.Obtain(c.Request.Context(), fmt.Sprintf("export:%s", firmId), 30*time.Second, nil)
			if err != nil {
				if err != redislock.ErrNotObtained {
					logger.WithFields(logrus.Fields{
						"field":   "billingLedgerExportHandler",
						"firm_id": firmId,
					}).Warn("error obtaining redis lock; proceeding without: " + err.Error())
				}
				lock = nil
			}
		}
		defer func() {
			if lock != nil {
				_ = lock.Release(c.Request.Context())
			}
		}()

		if err := reports.ExportBillingLedgerExcel(c.Request.Context(), c.Writer); err != nil {
			respondError(c, err)
		}
	}
}

func caseProfitabilityReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		rows, err := reports.GetCaseProfitabilityReport(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until DB/Redis are ready, app endpoints return 503.
	r := gin.New()
	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Safer default: deny all if not configured in production.
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := getRedisClient(os.Getenv("REDIS_ADDRESS"))
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.AuthMiddleware())
	r.Use(middlewares.LoaderMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.POST("/auth/login", loginHandler())
	r.POST("/auth/logout", logoutHandler())

	r.POST("/cases", createCaseHandler())
	r.GET("/cases", listCasesHandler())
	r.GET("/cases/:id", getCaseOverviewHandler())
	r.PATCH("/cases/:id/billing-config", updateBillingConfigHandler())
	r.POST("/cases/:id/billing-amount", changeBillingAmountHandler())
	r.POST("/cases/:id/rates", updateCaseRatesHandler())
	r.POST("/cases/:id/status", updateCaseStatusHandler())
	r.POST("/cases/:id/archive", archiveCaseHandler())

	r.POST("/cases/:id/submit-approval", submitApprovalHandler())
	r.POST("/cases/:id/approve", approveCaseHandler())
	r.POST("/cases/:id/reject", rejectCaseHandler())
	r.GET("/approvals/pending", pendingApprovalsHandler())

	r.POST("/time-entries", logTimeEntryHandler())
	r.GET("/cases/:id/time-entries", listTimeEntriesHandler())
	r.GET("/cases/:id/financials", caseFinancialsHandler())
	r.GET("/cases/:id/billing-history", billingHistoryHandler())

	r.POST("/invoices", createInvoiceHandler())
	r.POST("/invoices/:id/pay", invoiceTransitionHandler(true))
	r.POST("/invoices/:id/cancel", invoiceTransitionHandler(false))

	r.GET("/reports/billing-ledger.xlsx", billingLedgerExportHandler())
	r.GET("/reports/case-profitability", caseProfitabilityReportHandler())

	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// IMPORTANT: AutoMigrate can run DDL that blocks tables. Allow disabling
	// migrations on startup (run them as a separate job instead).
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateDatabase(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Panic(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// Set the session isolation level to READ COMMITTED
	for attempt := 1; ; attempt++ {
		err := db.Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error
		if err == nil {
			break
		}
		sleep := time.Second * time.Duration(1<<minInt64(int64(attempt), 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		logger.WithFields(logrus.Fields{
			"field":   "database",
			"attempt": attempt,
		}).Warn("failed to set isolation level; retrying in " + sleep.String() + ": " + err.Error())
		time.Sleep(sleep)
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}
