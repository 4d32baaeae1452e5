// Package interfaces holds the small contracts host applications implement
// to plug their own infrastructure (logging) into the section editor.
package interfaces
