// Package testutil provides the environment module tests run in.
//
// Key components:
//   - TestEnvironment: a unit directory and staging root in t.TempDir(),
//     a module.Env wired to a fresh bus, and a router
//   - Attach: subscribes modules the way a build does
//   - Route, OfferFile, OfferSymlink: drive attached modules through their
//     hooks
//   - Staged, StagedMode, Plan: inspect what the modules produced
//
// Every environment is isolated; nothing is shared between tests.
package testutil
