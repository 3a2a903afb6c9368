// Package cli provides the interactive orgdrive command-line client.
//
// The client uploads files through the same flow a browser would use:
// it asks the server for a presigned upload URL, PUTs the bytes straight to
// object storage, then registers the file with a type detected from its
// content. Listing, searching, favoriting and deleting go through the REST
// API. The REPL is started via App.Run, which blocks until the user exits.
package cli
