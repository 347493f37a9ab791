// Package todo loads, validates, and updates the task file.
//
// The task file (tasks.json) is a single JSON array of task records:
//
//	[
//	  {
//	    "id": 1,
//	    "description": "Complete project",
//	    "due_date": "2026-02-01",
//	    "priority": "high",
//	    "category": null,
//	    "completed": false,
//	    "created_at": "2026-01-20T09:30:00.123456+01:00"
//	  }
//	]
//
// "completed_at" appears once a task has been completed.
//
// # Loading
//
// Open never fails. A missing file is created with an empty array. A file
// that does not parse, or that does not match the embedded schema
// (tasks.schema.json), is logged as a warning and the store starts empty;
// the problem stays available through Store.LoadErr. The bad file is
// overwritten by the next mutation.
//
// # Saving
//
// Every mutation (Add, Complete, Delete) rewrites the whole file with
// 2-space indentation and a trailing newline. A failed write is logged and
// kept in Store.LastSaveErr; the in-memory collection remains authoritative.
//
// # Identifiers
//
// A new task gets the highest existing ID plus one, so deleting the
// highest-numbered task and adding another reissues that number.
//
// # Concurrency
//
// A Store is not safe for concurrent use, and nothing guards the file
// against two processes writing it at once. The last writer wins.
package todo
