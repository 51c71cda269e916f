// Package service contains the application's use cases: resolving a caller's
// workspace, the task and voice note lifecycles, credential registration and
// the retention purge.
//
// Services depend on the interfaces in internal/store and translate store
// errors into domain categories (see NewServiceError) that the API layer maps
// to status codes.
package service
