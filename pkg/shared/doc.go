// Package shared provides common utilities used across the DropForge SDK for
// Go. It includes network normalization, the explicit configuration record
// handed to every component, environment and file configuration loading,
// object ID normalization, and logger construction.
//
// This package is typically used internally by other SDK packages but is
// also available for direct use when building custom integrations.
//
// # Environment Variables
//
// ConfigFromEnv reads DROPFORGE_NETWORK, DROPFORGE_RPC_URL,
// DROPFORGE_PACKAGE_ID, DROPFORGE_REGISTRY_ID, DROPFORGE_PUBLISHER_URL,
// DROPFORGE_AGGREGATOR_URL, DROPFORGE_EPOCHS and DROPFORGE_OPERATOR_KEY.
// Network-scoped variants such as TESTNET_DROPFORGE_REGISTRY_ID take
// precedence over the unscoped names. A .env file in the working directory
// or any parent is loaded first without overriding variables already set.
package shared
