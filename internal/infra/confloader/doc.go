// Package confloader loads layered configuration with koanf and watches
// the configuration file for edits.
//
// Sources are applied in order, later ones overriding earlier ones:
//
//  1. Defaults already present in the target struct
//  2. The YAML configuration file, when one is given
//  3. Environment variables carrying the SUPSIM_ prefix
//  4. Explicit overrides from command-line flags (LoadMap)
//
// Every configuration key level is a single lowercase word, so
// SUPSIM_SNAPSHOT_MINSIZE maps onto snapshot.minsize without ambiguity.
package confloader
