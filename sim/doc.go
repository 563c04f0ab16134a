// Package sim provides the deterministic round simulator for the urban
// parcel-carrier game.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - environment.go: ScenarioEnvironment construction from a seed and a
//     shipper geography table
//   - round.go: the core costing function (demand attraction, mode split,
//     VKT, fleet sizing, revenue/cost/emission)
//   - result.go: the flat RoundResult record and multi-horizon scaling
//
// # Architecture
//
// The package is a pipeline of pure functions:
//
//	GeographyTable + seed -> NewEnvironment -> ScenarioEnvironment
//	ChoiceCoefficients + lever vector -> Probability (shippers, recipients)
//	RoundInput + ScenarioEnvironment + probabilities -> SimulateRound
//	DailyOutcome -> AggregateRound -> RoundResult
//
// History (history.go) owns the append-only sequence of RoundResults and the
// CSV export/import contract. The leaderboard lives in sim/leaderboard and
// consumes RoundResults; it is the only component with cross-session state.
//
// Two simulations with the same seed, geography table, coefficient tables and
// lever vector MUST produce bit-for-bit identical results.
package sim
