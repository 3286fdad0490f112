/*
Fsctl is a command-line client for a remotefs file server.

Usage:

	fsctl [--server URL] [--json] <command> [args]

Commands:

	ls [dir]                 list a directory
	find <pattern> [dir]     recursive glob search
	get <file> [-o out]      download (-o - writes to stdout)
	put <file>... [-d dir]   upload one or more files
	stat <file>              size, type and modification time
	mkdir <dir>              create a directory
	rm <file>                remove a file
	rmdir <dir>              remove a directory tree
	mv <from> <to>           rename

The server URL defaults to http://127.0.0.1:3030 or $REMOTEFS_URL.
*/
package main
