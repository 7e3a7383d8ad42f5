// Package migrations holds the schema of the SQL order log. Importing it
// registers every migration with pkg/migration.
package migrations
