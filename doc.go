// Package veridoc provides validated document retrieval for
// retrieval-augmented generation over access-controlled corpora.
//
// Veridoc combines hybrid retrieval (semantic vector search plus lexical
// TF-IDF scoring) with deterministic per-document authorization and PII
// redaction. Every document handed back by the pipeline has already passed
// the requesting principal's access check and been masked for their role;
// documents the principal may not read never leave the validator with
// content attached.
//
// # Basic Usage
//
// Create a client from a corpus loader and the built-in policy tables:
//
//	loader := corpus.NewFileLoader("corpus.yaml")
//	client, err := veridoc.NewClient(ctx, loader, nil, nil, policy.Default(), nil, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
//	principal := types.Principal{
//		Username:       "dana",
//		Department:     "finance",
//		DepartmentRole: "analyst",
//	}
//	result, err := client.RetrieveAndValidate(ctx, "quarterly revenue", principal, 5)
//
// Passing a vector index and an embedder enables the semantic retrieval
// axis; without them the pipeline scores lexically only:
//
//	index, err := vectorindex.NewBadgerIndex("./veridoc_index")
//	emb := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{Model: "text-embedding-3-small"})
//	client, err := veridoc.NewClient(ctx, loader, index, emb, policy.Default(), nil, logger)
//
// # Degradation
//
// The vector index is the only unreliable collaborator. When it times out or
// its circuit breaker opens, retrieval silently degrades to lexical-only
// scoring; the pipeline itself never fails a query because the index is
// down. Authorization and redaction have no such escape hatch: a policy
// table that does not cover every role and corpus domain fails construction,
// not requests.
package veridoc
