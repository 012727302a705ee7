// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing call sessions and message histories. They
// are not intended for production usage.
package testutil
