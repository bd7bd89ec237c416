package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopic(t *testing.T) {
	assert.Equal(t, "pvcompare/ceiling/pv_plant_01", Topic("pvcompare", TopicCeiling, "pv_plant_01"))
	assert.Equal(t, "site/a/status", Topic("/site/a/", TopicStatus))
	assert.Equal(t, "plants", Topic("", TopicPlants))
}
