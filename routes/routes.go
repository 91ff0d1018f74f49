package routes

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"rentkit/app"
	"rentkit/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) *controllers.Srv {
	// 控制器与依赖
	s := controllers.GetSrv(a)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	optMW := app.OptionalUser(s.AppSess, s.Repo)
	ownerMW := app.OwnerOnly(s.Pages)
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })
	r.MaxMultipartMemory = a.Config.Upload.MaxBytes

	// ------------------------------
	// WebAuthn（公开+受保护）
	// ------------------------------
	wa := r.Group("/webauthn")
	{
		wa.POST("/register/begin", s.BeginRegistration)
		wa.POST("/register/finish", s.FinishRegistration)

		wa.POST("/login/begin", s.BeginLogin)
		wa.POST("/login/finish", s.FinishLogin)

		// 登出不要求会话有效，过期 cookie 也能清掉
		wa.POST("/logout", s.Logout)
	}
	waAuth := wa.Group("", authMW, seenMW)
	{
		waAuth.GET("/whoami", s.Me)
		waAuth.POST("/logout-all", s.LogoutAll)
	}

	// 已登录用户添加新凭据（绑定手机等）
	creds := r.Group("/api/credentials", authMW, seenMW)
	{
		creds.POST("/add/begin", s.BeginAddCredential)
		creds.POST("/add/finish", s.FinishAddCredential)
	}

	api := r.Group("/api")

	users := api.Group("/users", authMW, seenMW)
	{
		users.GET("/me", s.Me)
		users.PUT("/me", s.UpdateMe)
		users.GET("", s.ListUsers) // ?sort=&limit=
		users.GET("/:id", s.GetUser)
	}

	equipment := api.Group("/equipment")
	{
		equipment.GET("", s.ListEquipment)
		equipment.GET("/:id", s.GetEquipment)
		equipment.GET("/:id/quote", optMW, s.Quote)
		equipment.GET("/:id/reviews", s.ListReviews)

		equipment.POST("", authMW, seenMW, s.CreateEquipment)
		equipment.PATCH("/:id", authMW, seenMW, s.UpdateEquipment)
		equipment.POST("/:id/toggle", authMW, seenMW, s.ToggleAvailability)
		equipment.POST("/:id/reviews", authMW, seenMW, s.CreateReview)
	}

	bookings := api.Group("/bookings", authMW, seenMW)
	{
		bookings.GET("", s.ListBookings) // ?role=renter|owner&status=
		bookings.GET("/:id", s.GetBooking)
		bookings.POST("", s.CreateBooking)
		bookings.PATCH("/:id/status", s.UpdateBookingStatus)
	}

	api.POST("/uploads", authMW, seenMW, s.Upload)

	// ------------------------------
	// 页面数据
	// ------------------------------
	pg := api.Group("/pages")
	{
		pg.GET("/routes", s.RouteTable)
		pg.GET("/how-it-works", s.HowItWorksPage)
		pg.GET("/home", optMW, s.HomePage)
		pg.GET("/browse", optMW, s.BrowsePage)
		pg.GET("/equipment", optMW, s.EquipmentPage)
	}
	pgAuth := pg.Group("", authMW, seenMW)
	{
		pgAuth.GET("/dashboard", s.DashboardPage)
		pgAuth.GET("/my-bookings", s.MyBookingsPage)
		pgAuth.GET("/my-listings", ownerMW, s.MyListingsPage)
		pgAuth.GET("/list-equipment", s.ListEquipmentPage)
		pgAuth.GET("/profile", s.ProfilePage)
	}

	if a.Config.Upload.Driver == "local" {
		r.Static(uploadPath(a.Config.Upload.PublicURL), a.Config.Upload.Dir)
	}
	if a.Config.WebDist != "" {
		serveSPA(r, s, a.Config.WebDist)
	}
	return s
}

// uploadPath is the route part of the local upload URL prefix.
func uploadPath(prefix string) string {
	p := prefix
	if u, err := url.Parse(prefix); err == nil && u.Host != "" {
		p = u.Path
	}
	if p == "" || p == "/" {
		return "/uploads"
	}
	return p
}

// serveSPA answers every page path with index.html and other unknown GETs
// with a file from dist when one exists.
func serveSPA(r *gin.Engine, s *controllers.Srv, dist string) {
	index := filepath.Join(dist, "index.html")
	for _, p := range s.Pages.Paths() {
		r.GET(p, func(c *gin.Context) { c.File(index) })
	}
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/webauthn/") {
			c.JSON(http.StatusNotFound, app.H{"error": "not found"})
			return
		}
		f := filepath.Join(dist, filepath.FromSlash(filepath.Clean("/"+path)))
		if st, err := os.Stat(f); err == nil && !st.IsDir() {
			c.File(f)
			return
		}
		c.File(index)
	})
}
