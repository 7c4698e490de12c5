// Package session bridges identities issued by the auth provider with the
// console's user records.
//
// A Session joins the provider identity (uid, email) with a Profile looked up
// in a Directory. The join order is fixed: user record by uid, then by email,
// then the configured seed identities, and finally a synthesized profile with
// the least-privileged role. The fallback never grants admin.
//
// The Manager owns all session state. Observers registered with Subscribe are
// called synchronously, in registration order, on sign-in, sign-out, restore
// and role changes, so guards and views always see the same session.
//
//	mgr := session.New(provider, directory,
//	    session.WithStore(session.NewRedisStore(rdb)),
//	    session.WithSeeds(seedProfiles...),
//	)
//	unsubscribe := mgr.Subscribe(func(e session.Event) {
//	    log.Info("session event", "type", e.Type)
//	})
//	defer unsubscribe()
//
//	r.Use(mgr.Middleware)
package session
