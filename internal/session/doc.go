// Package session records which builds have their containers started.
//
// "cruxcp start" creates the containers of a build and saves a [Session]
// naming them; "cruxcp stop" removes them and deletes the record. While a
// session exists, copy runs for that build reuse its containers instead of
// creating ephemeral ones.
//
// Sessions are JSON files in a state directory, one per build, named by the
// SHA-256 digest of the build identity so that any identity maps to a valid
// file name.
//
// Example usage:
//
//	store := session.NewStore(afero.NewOsFs(), paths.Sessions())
//
//	if err := store.Save(&session.Session{Build: "app-1.0", StartedAt: time.Now()}); err != nil {
//	    return err
//	}
//	active, err := store.Exists("app-1.0")
package session
