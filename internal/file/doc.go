// Package file turns a stored entry payload into file content.
package file
