// Package dropservice implements the tiered-pricing drop of a capped title
// collection: paid minting, owner reserve minting, predecessor-holder claims,
// payment settlement with a lifetime-capped beneficiary, and pull-payment
// withdrawals.
//
// Layering:
// - domain: collection aggregate, buyer accounts, pricing/allocation/claim/settlement rules, errors
// - application: commands/queries/workers using explicit ports
// - ports: title ledger, external holdings, funds transfer, unit of work, outbox
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Every state change runs inside one ports.UnitOfWork; funds move only after the owed balance is zeroed and committed.
// - Do not import adapters into domain/application.
package dropservice
