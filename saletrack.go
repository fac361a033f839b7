// Package saletrack monitors listings on third-party marketplaces and infers
// sales by comparing successive daily inventory snapshots. It crawls paginated
// search results through a controllable render session, escalating through
// navigation strategies when a marketplace blocks automated access, and diffs
// each validated snapshot against the previous day's to classify inventory
// changes as sales, new listings, or price updates.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named after
// their primary dependency or external service (e.g., sqlite/, rod/,
// flaresolverr/).
package saletrack
