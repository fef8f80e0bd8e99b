package main

import (
	"github.com/gin-gonic/gin"

	"hackhub/internal/api"
	"hackhub/internal/config"
	"hackhub/internal/logging"
	"hackhub/internal/storage"
)

func main() {
	logging.BootstrapLogger()

	cfg := config.Load()

	db := storage.MustDB(cfg.DatabaseURL)
	defer db.Close()

	objects, err := storage.NewMinioObjectStore(cfg.Minio)
	if err != nil {
		logging.Log.Fatalf("object storage init failed: %v", err)
	}

	profiles := &storage.PostgresProfileStore{DB: db}
	teams := &storage.PostgresTeamStore{DB: db}
	vendors := &storage.PostgresVendorStore{DB: db}
	benefits := &storage.PostgresBenefitStore{DB: db}
	events := &storage.PostgresEventStore{DB: db}
	news := &storage.PostgresNewsStore{DB: db}
	legal := &storage.PostgresLegalStore{DB: db}
	themes := &storage.PostgresThemeStore{DB: db}
	settings := &storage.PostgresSettingsStore{DB: db}
	contact := &storage.PostgresContactStore{DB: db}
	audit := &storage.PostgresAuditStore{DB: db}

	r := gin.Default()
	r.Use(api.CORSMiddleware())

	pub := r.Group("/api")
	{
		pub.POST("/auth/register", api.Register(profiles, settings, audit))
		pub.POST("/auth/admin-register", api.AdminRegister(profiles, audit, cfg.AdminSetupToken))
		pub.POST("/auth/login", api.Login(profiles, audit, cfg.JWTSecret, cfg.CookieSecure))
		pub.POST("/auth/logout", api.Logout())

		pub.GET("/news", api.ListNews(news, true))
		pub.GET("/news/:id", api.GetNews(news))
		pub.GET("/mentors", api.ListMentors(profiles))
		pub.GET("/events", api.ListEvents(events, true))
		pub.GET("/events/:id/gallery", api.EventGallery(events))
		pub.GET("/legal/:slug", api.GetLegalDocument(legal))
		pub.GET("/themes/active", api.ActiveTheme(themes))
		pub.GET("/homepage", api.HomepageContent(settings))
		pub.GET("/registration", api.RegistrationStatus(settings))
		pub.POST("/contact", api.SubmitContactMessage(contact))
	}

	auth := r.Group("/api", api.Auth(cfg.JWTSecret))
	{
		auth.GET("/me", api.Me(profiles))
		auth.PATCH("/me", api.UpdateMe(profiles))

		auth.GET("/my/benefits", api.MyBenefits(benefits))
		auth.POST("/my/benefits/:id/redeem", api.RedeemBenefit(benefits, audit))

		// team formation (participants)
		participant := auth.Group("", api.RequireRole(profiles, storage.RoleParticipant))
		{
			participant.POST("/teams", api.CreateTeam(teams, audit))
			participant.GET("/teams/lobby", api.TeamLobby(teams))
			participant.GET("/my/team", api.MyTeam(teams))
			participant.POST("/teams/join", api.JoinTeamByCode(teams, audit))
			participant.POST("/teams/:id/join", api.JoinTeamFromLobby(teams, audit))
			participant.POST("/teams/:id/ready", api.ToggleTeamReady(teams, audit))
			participant.PATCH("/teams/:id", api.UpdateTeam(teams, audit))
			participant.POST("/teams/:id/kick", api.KickMember(teams, audit))
			participant.POST("/teams/:id/leave", api.LeaveTeam(teams, audit))
			participant.DELETE("/teams/:id", api.DeleteTeam(teams, audit))
		}

		// organizer dashboard: user directory, content, benefit distribution
		organizer := auth.Group("", api.RequireRole(profiles, storage.RoleAdmin, storage.RoleOrganizer))
		{
			organizer.GET("/admin/users", api.AdminListUsers(profiles))

			organizer.GET("/admin/vendors", api.ListVendors(vendors))
			organizer.POST("/admin/vendors", api.AdminCreateVendor(vendors, audit))
			organizer.PUT("/admin/vendors/:id", api.AdminUpdateVendor(vendors, audit))
			organizer.DELETE("/admin/vendors/:id", api.AdminDeleteVendor(vendors, audit))

			organizer.GET("/admin/benefits", api.AdminListBenefits(benefits))
			organizer.POST("/admin/benefits", api.AdminCreateBenefit(benefits, audit))
			organizer.PUT("/admin/benefits/:id", api.AdminUpdateBenefit(benefits, audit))
			organizer.DELETE("/admin/benefits/:id", api.AdminDeleteBenefit(benefits, audit))
			organizer.POST("/admin/benefits/import", api.AdminImportBenefits(benefits, audit))
			organizer.POST("/admin/benefits/assign", api.AdminAssignBenefits(benefits, audit))
			organizer.POST("/admin/benefits/auto-assign", api.AdminAutoAssignBenefits(benefits, audit))

			organizer.GET("/admin/events", api.ListEvents(events, false))
			organizer.POST("/admin/events", api.AdminCreateEvent(events, audit))
			organizer.GET("/admin/events/:id", api.GetEvent(events))
			organizer.PUT("/admin/events/:id", api.AdminUpdateEvent(events, audit))
			organizer.DELETE("/admin/events/:id", api.AdminDeleteEvent(events, audit))
			organizer.POST("/admin/events/:id/gallery", api.AdminUploadGalleryImage(events, objects, audit))
			organizer.DELETE("/admin/events/:id/gallery/:imageId", api.AdminDeleteGalleryImage(events, objects, audit))

			organizer.GET("/admin/news", api.ListNews(news, false))
			organizer.POST("/admin/news", api.AdminCreateNews(news, audit))
			organizer.PUT("/admin/news/:id", api.AdminUpdateNews(news, audit))
			organizer.DELETE("/admin/news/:id", api.AdminDeleteNews(news, audit))
		}

		// admin only
		admin := auth.Group("", api.RequireRole(profiles, storage.RoleAdmin))
		{
			admin.PUT("/admin/users/:id", api.AdminUpdateUser(profiles, audit))
			admin.DELETE("/admin/users/:id", api.AdminDeleteUser(profiles, audit))

			admin.GET("/admin/mentor-applications", api.AdminListMentorApplications(profiles))
			admin.POST("/admin/mentor-applications/:id/approve", api.AdminApproveMentor(profiles, audit))
			admin.POST("/admin/mentor-applications/:id/reject", api.AdminRejectMentor(profiles, audit))
			admin.POST("/admin/mentor-applications/:id/reset", api.AdminResetMentor(profiles, audit))

			admin.GET("/admin/legal", api.AdminListLegalDocuments(legal))
			admin.POST("/admin/legal", api.AdminCreateLegalDocument(legal, audit))
			admin.PUT("/admin/legal/:id", api.AdminUpdateLegalDocument(legal, audit))
			admin.POST("/admin/legal/:id/publish", api.AdminPublishLegalDocument(legal, audit))
			admin.DELETE("/admin/legal/:id", api.AdminDeleteLegalDocument(legal, audit))

			admin.GET("/admin/themes", api.ListThemes(themes))
			admin.POST("/admin/themes", api.AdminCreateTheme(themes, audit))
			admin.PUT("/admin/themes/:id", api.AdminUpdateTheme(themes, audit))
			admin.POST("/admin/themes/:id/activate", api.AdminActivateTheme(themes, audit))
			admin.DELETE("/admin/themes/:id", api.AdminDeleteTheme(themes, audit))

			admin.GET("/admin/settings", api.AdminListSettings(settings))
			admin.PUT("/admin/settings/:key", api.AdminPutSetting(settings, audit))
			admin.POST("/admin/settings/smtp/test", api.AdminTestSMTP(audit))

			admin.GET("/admin/contact", api.AdminListContactMessages(contact))
			admin.DELETE("/admin/contact/:id", api.AdminDeleteContactMessage(contact))

			admin.GET("/admin/logs", api.AdminLogs(audit))
		}
	}

	logging.Log.Infof("Listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logging.Log.Fatalf("server stopped: %v", err)
	}
}
