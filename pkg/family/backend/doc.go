// Package backend provides the persistence backends behind a family.Store.
//
// Every backend stores the same data: an ordered collection of people with
// their parent and child links and optional positions. The order of people
// and of each link set survives a save/load round trip.
//
//   - [FileBackend]: a JSON file (the default)
//   - [SQLiteBackend]: an embedded SQLite database (pure Go, no cgo)
//   - [RedisBackend]: a JSON document under a single Redis key
//   - [MongoBackend]: one MongoDB document per person
//   - [Neo4jBackend]: Person nodes joined by PARENT_OF relationships
//
// Use [Open] to construct the backend selected in a config.Storage.
package backend
