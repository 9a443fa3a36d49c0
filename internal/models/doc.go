// Package models defines the core domain models for the POS terminal and its
// backend store of record.
//
// # Terminal-side models
//
//   - BillSession: the active bill on a terminal (bill number, location,
//     counter, customer and ordered line items)
//   - LineItem: one line of the active bill
//   - Product, Customer: catalog records after ingestion
//   - CartSnapshot: full line list pushed to the backend after every edit
//
// # Backend-side models
//
//   - HeldBill: a suspended bill parked server-side
//   - BillSettlement, BillDetailLine: finalized sale lines written on payment
//   - User: an operator account
//
// Relationships use codes and bill numbers rather than pointers so records
// can cross the wire unchanged.
package models
