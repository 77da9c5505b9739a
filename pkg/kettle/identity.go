package kettle

import (
	"github.com/google/uuid"
)

// NamespacePipelineIdentity is the UUID v5 namespace for deterministic
// pipeline and step identities, derived from "kettlegraph/pipeline-identity/v1"
// under the standard URL namespace.
var NamespacePipelineIdentity = uuid.NewSHA1(uuid.NameSpaceURL, []byte("kettlegraph/pipeline-identity/v1"))

// ID returns a deterministic identity for the pipeline built from its kind
// and name, so the same document gets the same ID wherever it is stored.
func (p *Pipeline) ID() uuid.UUID {
	return uuid.NewSHA1(NamespacePipelineIdentity, []byte(p.Kind.String()+"/"+p.Name))
}

// StepID returns a deterministic identity for a step of this pipeline.
func (p *Pipeline) StepID(stepName string) uuid.UUID {
	return uuid.NewSHA1(p.ID(), []byte(stepName))
}
