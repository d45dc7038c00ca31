// Package api is the HTTP surface of the clinic: login and logout,
// account registration and self-service, and the appointment,
// prescription and medication routes.
//
// Every protected route runs the bearer Authenticate middleware, then a
// role permission check, then an ownership check for record routes. A
// record the caller does not own answers 404 exactly like a record that
// does not exist.
package api
