// Package service holds the cross-cutting pieces the domain services
// share: status-carrying errors that map cleanly onto HTTP responses, and
// pagination parameters with enforced bounds.
package service
