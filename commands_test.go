package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/sameday/pkg/sameday"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newShipmentCmd(t *testing.T, body string, flags map[string]string) *cobra.Command {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shipment.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cmd := &cobra.Command{}
	cmd.Flags().String("file", "", "")
	cmd.Flags().String("delivery-interval", "", "")
	require.NoError(t, cmd.Flags().Set("file", path))
	for k, v := range flags {
		require.NoError(t, cmd.Flags().Set(k, v))
	}
	return cmd
}

func TestReadShipment_FillsReference(t *testing.T) {
	cmd := newShipmentCmd(t, `{"packageWeight": 2}`, nil)

	req, err := readShipment(cmd)

	require.NoError(t, err)
	assert.Equal(t, 2.0, *req.PackageWeight)
	_, err = uuid.Parse(req.ClientInternalReference)
	assert.NoError(t, err)
	assert.Nil(t, req.DeliveryInterval)
}

func TestReadShipment_KeepsReferenceAndInterval(t *testing.T) {
	cmd := newShipmentCmd(t, `{"clientInternalReference": "order-17"}`,
		map[string]string{"delivery-interval": "14-17"})

	req, err := readShipment(cmd)

	require.NoError(t, err)
	assert.Equal(t, "order-17", req.ClientInternalReference)
	assert.Equal(t, sameday.DeliveryInterval14to17, *req.DeliveryInterval)
}

func TestReadShipment_BadInterval(t *testing.T) {
	cmd := newShipmentCmd(t, `{}`, map[string]string{"delivery-interval": "25-26"})

	_, err := readShipment(cmd)

	assert.Error(t, err)
}

func TestFetchCatalog(t *testing.T) {
	api := sameday.NewMockAPIClient()
	client := sameday.NewWithAPIClient(sameday.Config{}, api, otelzap.New(zap.NewNop()), nil)

	out, err := fetchCatalog(context.Background(), client)

	require.NoError(t, err)
	assert.Len(t, out.Services, 2)
	assert.Len(t, out.PickupPoints.Data, 1)
	assert.Len(t, out.Counties.Data, 1)
	assert.Equal(t, 1, api.Calls("authenticate"))
}

func TestFetchCatalog_Error(t *testing.T) {
	api := sameday.NewMockAPIClient()
	api.OnGetCounties = func(ctx context.Context, token string, params *sameday.CountyQueryParams) (*sameday.GetCountiesResponse, error) {
		return nil, sameday.NewError("getCounties", sameday.CodeRemoteValidation, "Forbidden").WithStatusCode(403)
	}
	client := sameday.NewWithAPIClient(sameday.Config{}, api, otelzap.New(zap.NewNop()), nil)

	_, err := fetchCatalog(context.Background(), client)

	assert.ErrorIs(t, err, sameday.ErrRemoteValidation)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, printJSON(cmd, map[string]int{"total": 1}))

	assert.Equal(t, "{\n  \"total\": 1\n}\n", buf.String())
}
