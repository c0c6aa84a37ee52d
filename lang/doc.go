// Package lang resolves HOCON documents into plain values.
//
// Loading runs in four stages:
//
//  1. The grammar layer parses each document into a flat [Stream] of
//     [Assignment] values, expanding include directives in place.
//  2. The merger folds the stream into an arena [Tree] in document order.
//     Each value is resolved against the tree built so far, so a
//     substitution sees exactly what was defined before it.
//  3. References that could not be resolved during the fold stay in the
//     tree as markers.
//  4. The finalizer walks the tree once, resolves the remaining markers
//     with cycle detection, and produces a [Value].
//
// # Example
//
//	base { host = localhost, port = 8080 }
//	dev = ${base} { port = 9090 }
//	dev.url = "http://"${dev.host}":"${dev.port}
//	path = [/usr/bin]
//	path += /opt/bin
//	home = ${?HOME}
//
// # Includes
//
// An include directive splices another document into the enclosing object:
//
//	include "common.conf"
//	include required(file("secrets.conf"))
//	db { include url("https://config.example.com/db.conf") }
//
// Substitutions inside an included document are resolved relative to the
// point of inclusion first, then from the document root. A file target
// without an extension loads each of its .conf, .json, and .properties
// variants that exists.
//
// # Errors
//
// By default loading is lenient: a failed substitution or include leaves a
// bad value in the result, reachable through [Value.Err], while the rest
// of the document resolves normally. [WithStrict] makes the first such
// failure abort the load. Syntax errors always abort.
//
// Every error is an [*Error] and matches its kind's sentinel under
// [errors.Is]:
//
//	v, err := lang.LoadFile(ctx, "app.conf", lang.WithStrict(true))
//	if errors.Is(err, lang.ErrKeyNotFound) {
//		// ...
//	}
package lang
