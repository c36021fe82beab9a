// Package gbif queries the GBIF species and occurrence APIs.
//
// Name lookups page through /v1/species/search with the concurrent bulk
// fetcher. Backbone matches and occurrence image searches are single
// lookups and go through the client's lookup cache when one is configured.
package gbif
