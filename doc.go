// Package hdx is the composition root for the hdx hierarchical data store.
//
// hdx keeps a business hierarchy (customers, projects, quotes, freight
// requests and vendor quotes, plus a read-only vendor list) in one JSON file
// per collection. Records are never removed: deletes are soft and cascade
// down the hierarchy with per-item failure reporting.
//
// Features:
//
//   - **Atomic Saves**: Collections are written to a temp file and renamed into place, with timestamped backups.
//   - **Cascade Deletes**: A parent delete soft-deletes every descendant and reports partial failures.
//   - **Derived Fields**: Reads carry child counts and resolved vendor and quote names.
//   - **Validation**: Field rules, reference checks and tracking id uniqueness on create and update.
//   - **Typed Access**: Generic wrappers (`typed.Customers`, `typed.Quotes`, ...) over the record maps.
//
// Usage:
//
//	svc, err := hdx.Open("./data",
//		hdx.WithBackupRetention(5),
//		hdx.WithLogger(logger),
//	)
//
//	rec, err := svc.Create(ctx, hdx.Customers, map[string]any{"name": "Acme", "status": "active"})
//	id, _ := rec.ID()
//	report, err := svc.Delete(ctx, hdx.Customers, id)
package hdx
