// Package models defines the core domain models for billkhata.
//
// # Entities
//
//   - Member: a roommate sharing the room. Never hard-deleted, only deactivated.
//   - Bill / BillAssignment: a monthly utility bill and each member's share of it.
//   - Meal: one row per member per day with breakfast/lunch/dinner quantities.
//   - Finalization: audit record written each time a day's meals are frozen.
//   - Deposit / Shopping: money flowing into and out of the shared meal fund.
//   - Settings: room-wide configuration.
//
// # Conventions
//
//  1. Money and meal quantities are exact decimals (shopspring/decimal).
//     Amounts carry at most two fractional digits (the currency minor unit).
//  2. Dependent rows reference members by ID; there are no pointers between models.
//  3. Partial updates use explicit *Update structs with optional fields,
//     so an unknown or misspelled field cannot be accepted silently.
package models
