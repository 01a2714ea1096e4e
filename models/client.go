package models

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"go-dhis2bridge/config"
)

// FutureConflictCode is the DHIS2 error code for values falling outside
// the accepted future-period window. The server silently drops those
// values, so a 409 carrying only this code is a partial success.
const FutureConflictCode = "E7641"

// Client is a thin typed wrapper around the DHIS2 Web API of one server
type Client struct {
	RestClient           *resty.Client
	BaseURL              string
	AllowedConflictCodes []string
}

// NewClient builds a Client for the server using its configured PAT
func (s *Server) NewClient() (*Client, error) {
	if strings.TrimSpace(s.URL) == "" {
		return nil, errors.New("server has no URL configured")
	}
	baseURL := strings.TrimSuffix(s.URL, "/") + "/api"
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeaders(map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	})
	client.SetAuthScheme("ApiToken")
	client.SetAuthToken(s.AuthToken)

	codes := config.BridgeConf.API.AllowedConflictCodes
	if len(codes) == 0 {
		codes = []string{FutureConflictCode}
	}
	return &Client{
		RestClient:           client,
		BaseURL:              baseURL,
		AllowedConflictCodes: codes,
	}, nil
}

// Get sends a GET request to the given API path and returns the raw body
func (c *Client) Get(resourcePath string, params map[string]string) ([]byte, error) {
	request := c.RestClient.R()
	if params != nil {
		request.SetQueryParams(params)
	}
	resp, err := request.Get(resourcePath)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s failed", resourcePath)
	}
	return c.handleResponse(resp)
}

// Post sends a POST request with a JSON body to the given API path
func (c *Client) Post(resourcePath string, params map[string]string, body interface{}) ([]byte, error) {
	request := c.RestClient.R()
	if params != nil {
		request.SetQueryParams(params)
	}
	resp, err := request.SetBody(body).Post(resourcePath)
	if err != nil {
		return nil, errors.Wrapf(err, "POST %s failed", resourcePath)
	}
	return c.handleResponse(resp)
}

// handleResponse maps response statuses to the client error taxonomy. A
// 409 whose conflicts all carry allowed error codes is returned like a
// 200 body, the remote has already dropped the offending values.
func (c *Client) handleResponse(resp *resty.Response) ([]byte, error) {
	switch resp.StatusCode() {
	case http.StatusOK:
		return resp.Body(), nil
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusConflict:
		conflicts := gjson.GetBytes(resp.Body(), "response.conflicts").Array()
		offending := lo.Filter(conflicts, func(conflict gjson.Result, _ int) bool {
			return !lo.Contains(c.AllowedConflictCodes, conflict.Get("errorCode").String())
		})
		if len(offending) > 0 {
			return nil, &UnhandledConflictError{Body: string(resp.Body())}
		}
		log.WithField("conflicts", len(conflicts)).Info(
			"Remote dropped values outside the accepted period window")
		return resp.Body(), nil
	default:
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
}

// GetMe probes the credential and returns the identity details,
// including the organisation units visible to the PAT
func (c *Client) GetMe() (*MeResponse, error) {
	body, err := c.Get("/me", nil)
	if err != nil {
		return nil, err
	}
	var me MeResponse
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal /me response")
	}
	return &me, nil
}

// GetOrgUnits returns the summary list of all organisation units
// visible to the credential
func (c *Client) GetOrgUnits() ([]RemoteRef, error) {
	me, err := c.GetMe()
	if err != nil {
		return nil, err
	}
	return me.OrganisationUnits, nil
}

// GetOrgUnit returns the detail of one organisation unit
func (c *Client) GetOrgUnit(id string) (*OrgUnitDetail, error) {
	body, err := c.Get(fmt.Sprintf("/organisationUnits/%s", id), nil)
	if err != nil {
		return nil, err
	}
	var detail OrgUnitDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal organisation unit")
	}
	return &detail, nil
}

// GetCategoryCombos returns the summary list of all category combos
func (c *Client) GetCategoryCombos() ([]RemoteRef, error) {
	body, err := c.Get("/categoryCombos", nil)
	if err != nil {
		return nil, err
	}
	var list CategoryComboListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal category combo list")
	}
	return list.CategoryCombos, nil
}

// GetCategoryCombo returns the detail of one category combo
func (c *Client) GetCategoryCombo(id string) (*CategoryComboDetail, error) {
	body, err := c.Get(fmt.Sprintf("/categoryCombos/%s", id), nil)
	if err != nil {
		return nil, err
	}
	var detail CategoryComboDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal category combo")
	}
	return &detail, nil
}

// GetCategoryOptionCombo returns the detail of one category option combo
func (c *Client) GetCategoryOptionCombo(id string) (*CategoryOptionComboDetail, error) {
	body, err := c.Get(fmt.Sprintf("/categoryOptionCombos/%s", id), nil)
	if err != nil {
		return nil, err
	}
	var detail CategoryOptionComboDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal category option combo")
	}
	return &detail, nil
}

// GetDataSets returns the summary list of all data sets
func (c *Client) GetDataSets() ([]RemoteRef, error) {
	body, err := c.Get("/dataSets", nil)
	if err != nil {
		return nil, err
	}
	var list DataSetListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal data set list")
	}
	return list.DataSets, nil
}

// GetDataSet returns the detail of one data set
func (c *Client) GetDataSet(id string) (*DataSetDetail, error) {
	body, err := c.Get(fmt.Sprintf("/dataSets/%s", id), nil)
	if err != nil {
		return nil, err
	}
	var detail DataSetDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal data set")
	}
	return &detail, nil
}

// GetDataElement returns the detail of one data element
func (c *Client) GetDataElement(id string) (*DataElementDetail, error) {
	body, err := c.Get(fmt.Sprintf("/dataElements/%s", id), nil)
	if err != nil {
		return nil, err
	}
	var detail DataElementDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal data element")
	}
	return &detail, nil
}

// PostDataValueSet submits a data value set and returns the import summary
func (c *Client) PostDataValueSet(payload *DataValueSetRequest) (*ImportSummary, error) {
	body, err := c.Post("/dataValueSets", nil, payload)
	if err != nil {
		return nil, err
	}
	var summary ImportSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal import summary")
	}
	return &summary, nil
}
