package apitest

// Route patterns served by the fake API
const (
	RouteLogin          = "/api/auth/login"
	RouteRegister       = "/api/auth/register"
	RouteRefreshToken   = "/api/auth/refresh-token"
	RouteForgotPassword = "/api/auth/forgot-password"
	RouteResetPassword  = "/api/auth/reset-password"
	RouteMe             = "/api/auth/me"

	RouteReports = "/api/reports"
	RouteReport  = "/api/reports/{id}"
	RoutePeople  = "/api/people"
	RoutePerson  = "/api/people/{id}"
)

func (s *Server) initRoutes() {
	s.registerRouteFunc("POST "+RouteLogin, s.loginHandler())
	s.registerRouteFunc("POST "+RouteRegister, s.registerHandler())
	s.registerRouteFunc("POST "+RouteRefreshToken, s.refreshHandler())
	s.registerRouteFunc("POST "+RouteForgotPassword, s.forgotPasswordHandler())
	s.registerRouteFunc("POST "+RouteResetPassword, s.resetPasswordHandler())
	s.registerRouteFunc("GET "+RouteMe, chainMiddleware(s.meHandler(), s.requireAuth))

	s.registerRouteFunc("GET "+RouteReports, chainMiddleware(s.listReportsHandler(), s.requireAuth))
	s.registerRouteFunc("POST "+RouteReports, chainMiddleware(s.createReportHandler(), s.requireAuth))
	s.registerRouteFunc("GET "+RouteReport, chainMiddleware(s.getReportHandler(), s.requireAuth))
	s.registerRouteFunc("PUT "+RouteReport, chainMiddleware(s.updateReportHandler(), s.requireAuth))
	s.registerRouteFunc("DELETE "+RouteReport, chainMiddleware(s.deleteReportHandler(), s.requireAuth))

	s.registerRouteFunc("GET "+RoutePeople, chainMiddleware(s.listPeopleHandler(), s.requireAuth))
	s.registerRouteFunc("POST "+RoutePeople, chainMiddleware(s.createPersonHandler(), s.requireAuth))
	s.registerRouteFunc("GET "+RoutePerson, chainMiddleware(s.getPersonHandler(), s.requireAuth))
	s.registerRouteFunc("PUT "+RoutePerson, chainMiddleware(s.updatePersonHandler(), s.requireAuth))
	s.registerRouteFunc("DELETE "+RoutePerson, chainMiddleware(s.deletePersonHandler(), s.requireAuth))
}
