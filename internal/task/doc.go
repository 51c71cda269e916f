// Package task runs periodic background jobs inside the server process.
// The only job today is the retention purge, which the HTTP trigger can also
// run on demand.
package task
