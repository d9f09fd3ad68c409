// Package models defines the core domain models for BillBeam.
//
// # Bill model
//
// The following models make up a bill being split:
//   - Receipt: the captured line items plus tax, tip, miscellaneous and total
//   - ReceiptItem: one line item and the people sharing it
//   - Person: one diner on the roster
//
// People are identified by generated IDs, not names, so two diners may share a name.
//
// # Persisted models
//
//   - SavedReceipt: a receipt and its roster saved to a user's history
//   - Group: a reusable roster
//   - Preferences: per-user settings (default group)
//   - User: a signed-in account
//
// # Design Principles
//
// 1. **Eager totals**: Receipt.Total is recomputed by every mutation, never at read time
// 2. **Referential integrity**: ReceiptItem.AssignedTo only holds IDs on the current roster
// 3. **Avoid circular references**: Use ID strings instead of pointers for relationships
package models
