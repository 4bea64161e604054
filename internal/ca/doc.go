// Package ca provides a client for the Cognitive Architect REST API.
//
// Usage:
//
//	client, err := ca.New(baseURL, token, ca.WithTimeout(60*time.Second))
//	archs, err := client.ListArchitectures(ctx, ca.Sources{Private: true})
//	artifacts, err := client.ListArtifacts(ctx, archID)
//	instances, err := client.ListInstances(ctx, archID, ca.SystemContext, "")
//	elements, err := client.GetInstanceElements(ctx, archID, ca.SystemContext, instances[0].ID)
//	svg, err := client.GetDiagram(ctx, archID, ca.SystemContext, instances[0].ID, ca.FormatSVG)
//
// Listing architectures uses an undocumented endpoint that only answers PUT.
// Authentication is a personal token sent as "Authorization: token <pat>".
package ca
