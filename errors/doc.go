// Package errors defines the error envelope returned by the clinic API.
//
// Every handler failure is converted into an *AppError carrying a
// machine-readable code, the HTTP status to answer with and a flag telling
// clients whether a retry can help. Internal causes are kept on the error
// for logging and never serialised.
package errors
