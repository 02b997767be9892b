package steps

// Test suite names connectors may declare under connectorTestSuitesOptions
// in their descriptor.
const (
	SuiteUnitTests        = "unitTests"
	SuiteIntegrationTests = "integrationTests"
	SuiteAcceptanceTests  = "acceptanceTests"
)

// suiteSteps fixes the recognized suite names and their step identifiers in
// a deterministic order.
var suiteSteps = []struct {
	suite string
	step  StepID
}{
	{SuiteUnitTests, StepUnit},
	{SuiteIntegrationTests, StepIntegration},
	{SuiteAcceptanceTests, StepAcceptance},
}

// SkippedByMetadata computes the step identifiers to skip given the suite
// names a connector declares as enabled. A suite that is not declared is not
// assumed enabled: with no declared suites all recognized suites are skipped.
func SkippedByMetadata(enabledSuites []string) []StepID {
	enabled := make(map[string]struct{}, len(enabledSuites))
	for _, suite := range enabledSuites {
		enabled[suite] = struct{}{}
	}

	skipped := make([]StepID, 0, len(suiteSteps))
	for _, mapping := range suiteSteps {
		if _, ok := enabled[mapping.suite]; !ok {
			skipped = append(skipped, mapping.step)
		}
	}
	return skipped
}

// ApplyMetadataSkips returns a copy of opts with the metadata-derived
// skip-set appended to any pre-existing skips. The input is never mutated.
// Duplicates are kept as-is.
func ApplyMetadataSkips(opts RunStepOptions, enabledSuites []string) RunStepOptions {
	updated := opts.Clone()
	updated.SkipSteps = append(updated.SkipSteps, SkippedByMetadata(enabledSuites)...)
	return updated
}
