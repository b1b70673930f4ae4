package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Router builds the gin engine with every route and middleware.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), a.requestLogger(), a.metrics.middleware(), cors())
	a.setupRoutes(r)
	return r
}

func (a *App) setupRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(a.metrics.handler()))

	api := r.Group("/api")
	api.POST("/register", a.registerHandler)
	api.POST("/login", a.loginHandler)
	api.POST("/refresh", a.refreshHandler)
	api.POST("/revoke_refresh", a.revokeRefreshHandler)

	authGroup := api.Group("")
	authGroup.Use(a.requireAuth())
	authGroup.GET("/me", a.meHandler)
	authGroup.GET("/categories", a.listCategoriesHandler)
	authGroup.POST("/categories", a.createCategoryHandler)
	authGroup.DELETE("/categories/:id", a.deleteCategoryHandler)
	authGroup.GET("/transactions", a.listTransactionsHandler)
	authGroup.POST("/transactions", a.createTransactionHandler)
	authGroup.DELETE("/transactions/:id", a.deleteTransactionHandler)
	authGroup.GET("/updates", a.updatesHandler)
	authGroup.GET("/reports", a.reportHandler)
	authGroup.GET("/reports/categories", a.categoryReportHandler)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *App) registerHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, validationError("Username and password are required"))
		return
	}
	user, err := a.register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.log.Info("User registered", "user_id", user.ID, "username", user.Username)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "_id": user.ID})
}

func (a *App) loginHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, validationError("Username and password are required"))
		return
	}
	sess, err := a.login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (a *App) meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
