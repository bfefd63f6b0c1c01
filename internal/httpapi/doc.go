// Package httpapi serves the authgate JSON API.
//
// # Routes
//
//	POST /api/auth/register   create an account (always role "user")
//	POST /api/auth/login      verify credentials, issue a session token
//	GET  /api/auth/logout     expire the session cookie (authenticated)
//	GET  /api/users/me        own profile (authenticated)
//	GET  /api/users           paginated user list (admin only)
//	GET  /healthz             unauthenticated health probe
//
// Protected routes declare their role allow-set at registration time and are
// wrapped by the auth gate; handlers read the resolved principal from the
// request context.
//
// # Responses
//
// Successful responses use a {"status":"success", ...} envelope; rejections
// use {"status":"fail","message":...} with 400 for malformed input, 401 for
// missing/invalid tokens and wrong credentials, 403 for role denial, and 500
// for infrastructure failures.
package httpapi
