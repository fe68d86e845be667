// Package jobs manages job applications: the records the authorization core
// protects.
//
// Every application has exactly one owner, fixed at creation. Service
// checks each read, update and delete with auth.Authorize and scopes every
// listing and statistics query with auth.OwnerScope, so the owner predicate
// is part of the SQL for both the page and its total count.
package jobs
