package apiclient

// Remote API paths
const (
	RouteLogin          = "/api/auth/login"
	RouteRegister       = "/api/auth/register"
	RouteRefreshToken   = "/api/auth/refresh-token"
	RouteForgotPassword = "/api/auth/forgot-password"
	RouteResetPassword  = "/api/auth/reset-password"
	RouteMe             = "/api/auth/me"

	RouteReports = "/api/reports"
	RoutePeople  = "/api/people"
)
