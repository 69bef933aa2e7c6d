// Package apktype holds the types and sentinel errors shared between the
// public apk package and its internal collaborators.
package apktype
