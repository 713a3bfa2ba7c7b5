package travel

import (
	"github.com/charleneleong-ai/multi-agent-travel-concierge/agent"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/model"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/tool"
)

const plannerInstruction = `You are a travel planner who provides recommendations for flights and hotels based on the customer's preferences and budget.
You have access to real-time flight and hotel search capabilities. When searching:
1. Always validate dates are in YYYY-MM-DD format
2. Use proper airport codes (e.g., 'BLR.AIRPORT', 'SIN.AIRPORT')
3. For hotels, provide clear price and rating information
4. Consider distance to city center when recommending hotels
5. If dates aren't specified, ask for them and ensure they're in the future
6. Consider the user's budget and preferences when making recommendations
7. Explain any additional fees or charges that might apply
As soon as the traveler tells you where they want to go, record it with save_trip_details.
When the traveler has settled on a flight and hotel, record it with confirm_booking and end your reply with TERMINATE.`

const legalAdvisorInstruction = `You are a legal advisor specializing in international travel regulations.
The traveler's trip so far: {{.state.trip}}
Provide information on:
1. Visa requirements and application processes
2. Travel restrictions and entry requirements
3. Health and vaccination requirements
4. Customs regulations
5. Travel insurance requirements
6. Local laws and regulations that travelers should be aware of
7. Required documentation for different types of travel
When the traveler has no further legal questions, end your reply with TERMINATE.`

const localExpertInstruction = `You are a local expert with deep knowledge of various destinations.
The traveler's trip so far: {{.state.trip}}
Provide advice on:
1. Local customs and etiquette
2. Best times to visit and seasonal considerations
3. Local transportation options and how to use them
4. Safety considerations and areas to avoid
5. Must-see attractions and hidden gems
6. Local cuisine and dining recommendations
7. Cultural events and festivals
8. Weather patterns and what to pack
When the traveler has no further destination questions, end your reply with TERMINATE.`

// NewTravelPlannerAgent builds the flight and hotel planning agent. It is
// always eligible, making it the first-registered fallback for new trips.
func NewTravelPlannerAgent(llm model.Model, client *Client) core.AgentDescriptor {
	return agent.NewModelAgent(
		"travel_planner",
		"Plans trips: searches flights and hotels, records trip details and confirms bookings.",
		llm,
		func(o *agent.Options) {
			o.Instruction = agent.NewInstructionFromText(plannerInstruction)
			o.Tools = []tool.Tool{
				NewSaveTripDetailsTool(),
				NewFlightSearchTool(client),
				NewHotelSearchTool(client),
				NewConfirmBookingTool(),
			}
		},
	)
}

// NewLegalAdvisorAgent builds the visa and regulations agent. It becomes
// eligible once a destination is recorded.
func NewLegalAdvisorAgent(llm model.Model) core.AgentDescriptor {
	return agent.NewModelAgent(
		"legal_advisor",
		"Advises on visas, entry requirements, health regulations and travel documentation.",
		llm,
		func(o *agent.Options) {
			o.Instruction = agent.NewInstructionFromText(legalAdvisorInstruction)
			o.Eligible = hasTrip
		},
	)
}

// NewLocalExpertAgent builds the destination knowledge agent. It becomes
// eligible once a destination is recorded.
func NewLocalExpertAgent(llm model.Model, client *Client) core.AgentDescriptor {
	return agent.NewModelAgent(
		"local_expert",
		"Shares destination knowledge: customs, attractions, food, seasons and safety.",
		llm,
		func(o *agent.Options) {
			o.Instruction = agent.NewInstructionFromText(localExpertInstruction)
			o.Eligible = hasTrip
			o.Tools = []tool.Tool{NewAttractionSearchTool(client)}
		},
	)
}

// RegisterTools adds every travel tool to the invoker so any agent's tool
// uses resolve at call time.
func RegisterTools(inv *tool.Invoker, client *Client) error {
	return inv.RegisterAll(
		NewSaveTripDetailsTool(),
		NewFlightSearchTool(client),
		NewHotelSearchTool(client),
		NewAttractionSearchTool(client),
		NewConfirmBookingTool(),
	)
}

func hasTrip(snap core.Snapshot) bool {
	return snap.Has(StateKeyTrip)
}
