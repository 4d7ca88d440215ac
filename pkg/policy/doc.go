// Package policy reads and writes permission policy documents.
//
// A policy document lists roles with their default level and explicit
// overrides:
//
//	roles:
//	  - name: Editor
//	    default: Write
//	    databases:
//	      db1: Read
//	    fields:
//	      db1_users_email: None
//
// Apply loads a document into a permission.Matrix, replacing the roles it
// names. Export produces the document for the current matrix. Watcher
// reloads a document whenever its file changes.
package policy
