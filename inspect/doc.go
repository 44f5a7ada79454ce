// Package inspect serves read-only HTTP views of an injector tree.
//
//	router := inspect.NewRouter("greeter", app.Injector)
//	http.ListenAndServe(":8081", router)
//
// Handlers report registry snapshots, construction levels, health, and
// build information. They never construct objects.
package inspect
