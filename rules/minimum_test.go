package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/models"
)

func TestMinimumRequirements_VOSBaseline(t *testing.T) {
	c, err := catalog.LoadDefault()
	require.NoError(t, err)

	report, err := MinimumRequirements(c, models.VOS, "medium-regular-spr-t23", models.FeatureFlags{})
	require.NoError(t, err)
	require.NotEmpty(t, report.MandatoryPods)
	require.Greater(t, report.TotalVcores, 0.0)
}

func TestMinimumRequirements_VCSRFlagIncludesVCSR(t *testing.T) {
	c, err := catalog.LoadDefault()
	require.NoError(t, err)

	report, err := MinimumRequirements(c, models.Verizon, "medium-regular-spr-t23", models.FeatureFlags{VCSRDeploymentRequired: true})
	require.NoError(t, err)
	require.True(t, report.IncludesVCSR)
	require.Greater(t, report.TotalVcores, 0.0)
}

func TestMinimumRequirements_UnknownOperatorErrors(t *testing.T) {
	c, err := catalog.LoadDefault()
	require.NoError(t, err)

	_, err = MinimumRequirements(c, models.Operator("not-real"), "default", models.FeatureFlags{})
	require.Error(t, err)
}
